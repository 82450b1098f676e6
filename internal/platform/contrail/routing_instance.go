package contrail

import "context"

// GetRoutingInstance returns the routing instance with the given uuid.
func (c *RealClient) GetRoutingInstance(ctx context.Context, id string) (*RoutingInstance, error) {
	return getResource[RoutingInstance](ctx, c, KindRoutingInstance, id)
}

// CreateRoutingInstance creates a routing instance under the network named
// by all but the last component of fqName.
func (c *RealClient) CreateRoutingInstance(ctx context.Context, fqName []string) (*RoutingInstance, error) {
	return createResource[RoutingInstance](ctx, c, KindRoutingInstance, map[string]any{
		"fq_name":     fqName,
		"parent_type": string(KindVirtualNetwork),
	})
}

// DeleteRoutingInstance deletes the routing instance with the given uuid.
func (c *RealClient) DeleteRoutingInstance(ctx context.Context, id string) error {
	return deleteResource(ctx, c, KindRoutingInstance, id)
}
