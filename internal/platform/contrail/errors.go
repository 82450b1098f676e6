package contrail

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the resolver, association manager and orchestrator.
var (
	// ErrNotFound indicates a reference does not resolve to a resource.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input such as a bad direction,
	// a malformed route target key, or missing credentials.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPrecursorMissing indicates enable-routing was given no target and
	// the left network has no association to derive one from.
	ErrPrecursorMissing = errors.New("precursor missing")

	// ErrStoreUnavailable indicates a transport, server or decode failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPartialCompletion marks warnings for operations that reached their
	// primary goal but left a secondary step undone.
	ErrPartialCompletion = errors.New("partial completion")

	// ErrConflict indicates the store rejected a write because of existing
	// state, e.g. a duplicate create or a delete of a still-referenced resource.
	ErrConflict = errors.New("conflict with existing resource")

	// ErrUnauthorized indicates the store rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the config store.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap maps the HTTP status onto the error taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode == http.StatusBadRequest:
		return ErrInvalidArgument
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrStoreUnavailable
	}
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error indicates a conflict occurred.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnavailable checks if an error is a transport or server failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// RawPayload returns the store's raw error body carried by err, if any.
func RawPayload(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
