package contrail

import "context"

// GetRouteTarget returns the route target with the given uuid.
func (c *RealClient) GetRouteTarget(ctx context.Context, id string) (*RouteTarget, error) {
	return getResource[RouteTarget](ctx, c, KindRouteTarget, id)
}

// CreateRouteTarget creates a route target whose fq-name is the single key.
func (c *RealClient) CreateRouteTarget(ctx context.Context, key string) (*RouteTarget, error) {
	return createResource[RouteTarget](ctx, c, KindRouteTarget, map[string]any{
		"fq_name": []string{key},
	})
}

// DeleteRouteTarget deletes the route target with the given uuid. The store
// rejects the delete with a conflict while references remain.
func (c *RealClient) DeleteRouteTarget(ctx context.Context, id string) error {
	return deleteResource(ctx, c, KindRouteTarget, id)
}
