package contrail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// getResource reads /<kind>/<id> and unwraps the {"<kind>": {...}} envelope.
func getResource[T any](ctx context.Context, c *RealClient, kind Kind, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty %s id", ErrInvalidArgument, kind)
	}
	var envelope map[string]*T
	if err := c.read(ctx, http.MethodGet, "/"+string(kind)+"/"+url.PathEscape(id), nil, &envelope); err != nil {
		return nil, err
	}
	res := envelope[string(kind)]
	if res == nil {
		return nil, fmt.Errorf("%w: response for %s %s has no %q object", ErrStoreUnavailable, kind, id, kind)
	}
	return res, nil
}

// createResource posts the object to the /<kind>s collection.
func createResource[T any](ctx context.Context, c *RealClient, kind Kind, object map[string]any) (*T, error) {
	var envelope map[string]*T
	body := map[string]any{string(kind): object}
	if err := c.write(ctx, http.MethodPost, "/"+string(kind)+"s", body, &envelope); err != nil {
		return nil, err
	}
	res := envelope[string(kind)]
	if res == nil {
		return nil, fmt.Errorf("%w: create response for %s has no %q object", ErrStoreUnavailable, kind, kind)
	}
	return res, nil
}

func deleteResource(ctx context.Context, c *RealClient, kind Kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty %s id", ErrInvalidArgument, kind)
	}
	return c.write(ctx, http.MethodDelete, "/"+string(kind)+"/"+url.PathEscape(id), nil, nil)
}
