package contrail

import "context"

// NameResolver resolves fq-names to uuids.
type NameResolver interface {
	// FQNameToID returns the uuid of the resource of the given kind, or an
	// error matching ErrNotFound when no such resource exists.
	FQNameToID(ctx context.Context, kind Kind, fqName []string) (string, error)
}

// NetworkReader reads virtual networks.
type NetworkReader interface {
	// ListNetworks returns references to all networks, or only to those
	// owned by parentID when it is non-empty.
	ListNetworks(ctx context.Context, parentID string) ([]Ref, error)
	GetNetwork(ctx context.Context, id string) (*VirtualNetwork, error)
}

// RoutingInstanceManager reads, creates and deletes routing instances.
type RoutingInstanceManager interface {
	GetRoutingInstance(ctx context.Context, id string) (*RoutingInstance, error)
	// CreateRoutingInstance creates an instance parented by the network
	// whose fq-name prefixes fqName.
	CreateRoutingInstance(ctx context.Context, fqName []string) (*RoutingInstance, error)
	DeleteRoutingInstance(ctx context.Context, id string) error
}

// RouteTargetManager reads, creates and deletes route targets.
type RouteTargetManager interface {
	GetRouteTarget(ctx context.Context, id string) (*RouteTarget, error)
	CreateRouteTarget(ctx context.Context, key string) (*RouteTarget, error)
	DeleteRouteTarget(ctx context.Context, id string) error
}

// RefUpdater adds or removes references between resources.
type RefUpdater interface {
	// UpdateRef issues a single ref-update call. The store applies it
	// atomically; no two calls are ever atomic together.
	UpdateRef(ctx context.Context, update RefUpdate) error
}

// ConfigStore combines all store interfaces.
type ConfigStore interface {
	NameResolver
	NetworkReader
	RoutingInstanceManager
	RouteTargetManager
	RefUpdater
}
