// Package contrail provides a client for the network-configuration store
// (the OpenContrail config API) together with the identity resolver and the
// generic get-or-create and delete operations built on top of it.
//
// # Architecture
//
//   - client.go: interfaces consumed by the association and orchestration layers
//   - real_client.go: HTTP transport, authentication, rate limiting and retries
//   - network.go, routing_instance.go, route_target.go, refs.go: per-resource calls
//   - resolver.go: reference (uuid or fq-name) to uuid resolution
//   - operations.go: EnsureOperation and DeleteOperation
//   - errors.go: error taxonomy and store error classification
//   - metrics.go: Prometheus instrumentation of store requests
//
// # Error Taxonomy
//
// Every failure returned by this package matches one of the sentinel errors
// through errors.Is: ErrNotFound, ErrInvalidArgument, ErrConflict,
// ErrUnauthorized or ErrStoreUnavailable. Store responses with a non-2xx
// status are returned as *APIError, which keeps the raw response body so it
// can be shown to the user.
//
// # Retries
//
// Reads (GET and fqname-to-id) are retried with exponential backoff when the
// store is unavailable. Writes are issued once: the callers make every write
// idempotent by re-reading state, so a failed write is recovered by running
// the whole command again rather than by retrying blindly.
package contrail
