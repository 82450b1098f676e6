package contrail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Resolver turns user-supplied references into canonical uuids.
type Resolver struct {
	names NameResolver
}

// NewResolver creates a resolver backed by names.
func NewResolver(names NameResolver) *Resolver {
	return &Resolver{names: names}
}

// IsUUID reports whether ref is a uuid in canonical dashed form.
func IsUUID(ref string) bool {
	if len(ref) != 36 {
		return false
	}
	_, err := uuid.Parse(ref)
	return err == nil
}

// SplitFQName converts a textual reference into fq-name components.
// Route-target keys contain colons themselves and form a single component;
// other kinds use colon-separated components (domain:project:network).
func SplitFQName(ref string, kind Kind) []string {
	if kind == KindRouteTarget {
		return []string{ref}
	}
	return strings.Split(ref, ":")
}

// Resolve returns the uuid for ref. A uuid is returned unchanged without a
// store call; anything else is looked up as an fq-name of the given kind.
func (r *Resolver) Resolve(ctx context.Context, ref string, kind Kind) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty %s reference", ErrInvalidArgument, kind)
	}
	if IsUUID(ref) {
		return ref, nil
	}
	return r.ResolveFQName(ctx, kind, SplitFQName(ref, kind))
}

// ResolveFQName looks up the uuid of the resource with the given fq-name.
func (r *Resolver) ResolveFQName(ctx context.Context, kind Kind, fqName []string) (string, error) {
	id, err := r.names.FQNameToID(ctx, kind, fqName)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", kind, strings.Join(fqName, ":"), err)
	}
	return id, nil
}
