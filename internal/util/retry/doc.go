// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, and maximum delay. The config store client uses it for
// idempotent reads, retrying only errors accepted by the [WithRetryIf]
// predicate; everything else is returned after the first attempt.
package retry
