package contrail

import (
	"context"
	"fmt"
)

// MockClient is a mock implementation of ConfigStore. Unset lookups report
// ErrNotFound; unset writes succeed.
type MockClient struct {
	FQNameToIDFunc func(ctx context.Context, kind Kind, fqName []string) (string, error)

	// Networks
	ListNetworksFunc func(ctx context.Context, parentID string) ([]Ref, error)
	GetNetworkFunc   func(ctx context.Context, id string) (*VirtualNetwork, error)

	// Routing instances
	GetRoutingInstanceFunc    func(ctx context.Context, id string) (*RoutingInstance, error)
	CreateRoutingInstanceFunc func(ctx context.Context, fqName []string) (*RoutingInstance, error)
	DeleteRoutingInstanceFunc func(ctx context.Context, id string) error

	// Route targets
	GetRouteTargetFunc    func(ctx context.Context, id string) (*RouteTarget, error)
	CreateRouteTargetFunc func(ctx context.Context, key string) (*RouteTarget, error)
	DeleteRouteTargetFunc func(ctx context.Context, id string) error

	UpdateRefFunc func(ctx context.Context, update RefUpdate) error
}

var _ ConfigStore = (*MockClient)(nil)

// FQNameToID mocks fq-name resolution.
func (m *MockClient) FQNameToID(ctx context.Context, kind Kind, fqName []string) (string, error) {
	if m.FQNameToIDFunc != nil {
		return m.FQNameToIDFunc(ctx, kind, fqName)
	}
	return "", fmt.Errorf("%w: %s %v", ErrNotFound, kind, fqName)
}

// ListNetworks mocks listing networks.
func (m *MockClient) ListNetworks(ctx context.Context, parentID string) ([]Ref, error) {
	if m.ListNetworksFunc != nil {
		return m.ListNetworksFunc(ctx, parentID)
	}
	return nil, nil
}

// GetNetwork mocks reading a network.
func (m *MockClient) GetNetwork(ctx context.Context, id string) (*VirtualNetwork, error) {
	if m.GetNetworkFunc != nil {
		return m.GetNetworkFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: virtual-network %s", ErrNotFound, id)
}

// GetRoutingInstance mocks reading a routing instance.
func (m *MockClient) GetRoutingInstance(ctx context.Context, id string) (*RoutingInstance, error) {
	if m.GetRoutingInstanceFunc != nil {
		return m.GetRoutingInstanceFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: routing-instance %s", ErrNotFound, id)
}

// CreateRoutingInstance mocks routing instance creation.
func (m *MockClient) CreateRoutingInstance(ctx context.Context, fqName []string) (*RoutingInstance, error) {
	if m.CreateRoutingInstanceFunc != nil {
		return m.CreateRoutingInstanceFunc(ctx, fqName)
	}
	return &RoutingInstance{UUID: "mock-ri", FQName: fqName}, nil
}

// DeleteRoutingInstance mocks routing instance deletion.
func (m *MockClient) DeleteRoutingInstance(ctx context.Context, id string) error {
	if m.DeleteRoutingInstanceFunc != nil {
		return m.DeleteRoutingInstanceFunc(ctx, id)
	}
	return nil
}

// GetRouteTarget mocks reading a route target.
func (m *MockClient) GetRouteTarget(ctx context.Context, id string) (*RouteTarget, error) {
	if m.GetRouteTargetFunc != nil {
		return m.GetRouteTargetFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: route-target %s", ErrNotFound, id)
}

// CreateRouteTarget mocks route target creation.
func (m *MockClient) CreateRouteTarget(ctx context.Context, key string) (*RouteTarget, error) {
	if m.CreateRouteTargetFunc != nil {
		return m.CreateRouteTargetFunc(ctx, key)
	}
	return &RouteTarget{UUID: "mock-rt", FQName: []string{key}, Name: key}, nil
}

// DeleteRouteTarget mocks route target deletion.
func (m *MockClient) DeleteRouteTarget(ctx context.Context, id string) error {
	if m.DeleteRouteTargetFunc != nil {
		return m.DeleteRouteTargetFunc(ctx, id)
	}
	return nil
}

// UpdateRef mocks a ref-update call.
func (m *MockClient) UpdateRef(ctx context.Context, update RefUpdate) error {
	if m.UpdateRefFunc != nil {
		return m.UpdateRefFunc(ctx, update)
	}
	return nil
}
