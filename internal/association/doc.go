// Package association manages references between routing instances and
// route targets in the config store.
//
// Every method is a single idempotent step: get-or-create instead of create,
// and deletes that treat an already-missing resource as done. A sequence of
// these steps interrupted at any point can be re-run to completion. No method
// spans more than one store write, since the store has no multi-object
// transactions.
package association
