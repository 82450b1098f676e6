package contrail

import (
	"context"
	"fmt"
)

// EnsureOperation encapsulates get-or-create logic for any store resource.
//
// The store has no reserve-if-absent call, so two writers may both miss the
// lookup and both create. When the create is rejected as a conflict the
// operation looks the resource up again and returns what the store holds,
// never its own create response.
//
// Usage example:
//
//	rt, created, err := (&EnsureOperation[*RouteTarget]{
//	    Name:         key,
//	    ResourceType: KindRouteTarget,
//	    Lookup:       func(ctx context.Context) (*RouteTarget, error) { return findByKey(ctx, key) },
//	    Create:       func(ctx context.Context) (*RouteTarget, error) { return store.CreateRouteTarget(ctx, key) },
//	}).Execute(ctx)
type EnsureOperation[T any] struct {
	Name         string
	ResourceType Kind

	// Lookup returns the resource, or an error matching ErrNotFound when absent.
	Lookup func(ctx context.Context) (T, error)

	// Create creates the resource.
	Create func(ctx context.Context) (T, error)
}

// Execute performs the ensure operation: look up, create if absent, and
// look up again if the create lost a race.
func (op *EnsureOperation[T]) Execute(ctx context.Context) (T, bool, error) {
	var zero T

	resource, err := op.Lookup(ctx)
	if err == nil {
		return resource, false, nil
	}
	if !IsNotFound(err) {
		return zero, false, fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err)
	}

	resource, err = op.Create(ctx)
	if err == nil {
		return resource, true, nil
	}
	if !IsConflict(err) {
		return zero, false, fmt.Errorf("failed to create %s %s: %w", op.ResourceType, op.Name, err)
	}

	resource, err = op.Lookup(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s %s after conflicting create: %w", op.ResourceType, op.Name, err)
	}
	return resource, false, nil
}

// DeleteOperation encapsulates idempotent deletion of a store resource.
// A resource that is already gone counts as deleted by someone else and is
// not an error. Conflicts (remaining references) are returned unchanged so
// the caller can decide how to report them.
type DeleteOperation struct {
	Name         string
	ResourceType Kind
	ID           string

	Delete func(ctx context.Context, id string) error
}

// Execute deletes the resource and reports whether this call removed it.
func (op *DeleteOperation) Execute(ctx context.Context) (bool, error) {
	err := op.Delete(ctx, op.ID)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err)
	}
}
