// Package orchestration sequences association steps into the four
// connectivity operations: enable and disable routing between two networks,
// and add or remove a route target on one network.
//
// Each operation walks the states
//
//	RESOLVING -> TARGET_READY -> LEFT_LINKED -> RIGHT_LINKED -> DONE
//
// and ends in FAILED when a step fails. Single-sided operations skip
// RIGHT_LINKED. Completed steps are never rolled back: every step is
// idempotent, so re-running the same operation resumes where the failed
// run stopped. The left side is always handled before the right side so a
// re-run retries the same remaining step.
//
// Secondary steps that fail after the primary goal was reached (deleting an
// emptied routing instance, deleting an unreferenced route target, reading
// the final state) are recorded as warnings wrapping
// contrail.ErrPartialCompletion and do not fail the operation.
package orchestration
