// Package fake provides an in-memory config store that serves the store's
// HTTP API through httptest, for tests that exercise rtctl end to end.
//
// The fake keeps the store's relevant semantics: fq-name uniqueness (duplicate
// creates are rejected with 409), refusal to delete a route target that is
// still referenced (409), idempotent ref-updates, and 404 for unknown ids and
// names. Every request is recorded so tests can assert on call counts, and
// FailNext injects one-shot failures.
package fake
