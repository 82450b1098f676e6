package association

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/rtctl/internal/platform/contrail"
)

// Manager performs the idempotent steps the orchestrator sequences.
type Manager struct {
	store    contrail.ConfigStore
	resolver *contrail.Resolver
	log      logr.Logger
}

// NewManager creates a manager backed by store.
func NewManager(store contrail.ConfigStore, log logr.Logger) *Manager {
	return &Manager{
		store:    store,
		resolver: contrail.NewResolver(store),
		log:      log,
	}
}

// ResolveNetwork resolves a network reference and reads the network.
func (m *Manager) ResolveNetwork(ctx context.Context, ref string) (*contrail.VirtualNetwork, error) {
	id, err := m.resolver.Resolve(ctx, ref, contrail.KindVirtualNetwork)
	if err != nil {
		return nil, err
	}
	vn, err := m.store.GetNetwork(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("virtual-network %s: %w", ref, err)
	}
	return vn, nil
}

// FindTarget resolves a route target by key without creating it.
func (m *Manager) FindTarget(ctx context.Context, key string) (*contrail.RouteTarget, error) {
	id, err := m.resolver.ResolveFQName(ctx, contrail.KindRouteTarget, []string{key})
	if err != nil {
		return nil, err
	}
	return m.store.GetRouteTarget(ctx, id)
}

// GetOrCreateTarget returns the route target with the given key, creating it
// when absent. A create rejected because another writer got there first is
// followed by a fresh lookup, so concurrent callers converge on one target.
func (m *Manager) GetOrCreateTarget(ctx context.Context, key string) (*contrail.RouteTarget, bool, error) {
	op := &contrail.EnsureOperation[*contrail.RouteTarget]{
		Name:         key,
		ResourceType: contrail.KindRouteTarget,
		Lookup: func(ctx context.Context) (*contrail.RouteTarget, error) {
			return m.FindTarget(ctx, key)
		},
		Create: func(ctx context.Context) (*contrail.RouteTarget, error) {
			return m.store.CreateRouteTarget(ctx, key)
		},
	}
	rt, created, err := op.Execute(ctx)
	if err != nil {
		return nil, false, err
	}
	if created {
		m.log.Info("created route target", "target", key, "uuid", rt.UUID)
	}
	return rt, created, nil
}

// TargetKey returns the key of the referenced route target, reading the
// target when the reference carries no fq-name.
func (m *Manager) TargetKey(ctx context.Context, ref contrail.RouteTargetRef) (string, error) {
	if key := ref.Key(); key != "" {
		return key, nil
	}
	rt, err := m.store.GetRouteTarget(ctx, ref.UUID)
	if err != nil {
		return "", err
	}
	return rt.Key(), nil
}

// PrimaryInstance reads the network's primary routing instance.
func (m *Manager) PrimaryInstance(ctx context.Context, vn *contrail.VirtualNetwork) (*contrail.RoutingInstance, error) {
	primary, ok := vn.PrimaryInstance()
	if !ok {
		return nil, fmt.Errorf("%w: virtual-network %s has no routing instance", contrail.ErrNotFound, vn.UUID)
	}
	return m.store.GetRoutingInstance(ctx, primary.UUID)
}

// FindInstance returns the named routing instance of vn, or its primary
// instance when name is empty. It never creates.
func (m *Manager) FindInstance(ctx context.Context, vn *contrail.VirtualNetwork, name string) (*contrail.RoutingInstance, error) {
	if name == "" {
		return m.PrimaryInstance(ctx, vn)
	}
	id, err := m.resolver.ResolveFQName(ctx, contrail.KindRoutingInstance, vn.InstanceFQName(name))
	if err != nil {
		return nil, err
	}
	return m.store.GetRoutingInstance(ctx, id)
}

// GetOrCreateInstance returns the named routing instance of vn, creating it
// under vn when absent. An empty name selects the primary instance, which
// is never created.
func (m *Manager) GetOrCreateInstance(ctx context.Context, vn *contrail.VirtualNetwork, name string) (*contrail.RoutingInstance, bool, error) {
	if name == "" {
		ri, err := m.PrimaryInstance(ctx, vn)
		return ri, false, err
	}
	fqName := vn.InstanceFQName(name)
	op := &contrail.EnsureOperation[*contrail.RoutingInstance]{
		Name:         name,
		ResourceType: contrail.KindRoutingInstance,
		Lookup: func(ctx context.Context) (*contrail.RoutingInstance, error) {
			return m.FindInstance(ctx, vn, name)
		},
		Create: func(ctx context.Context) (*contrail.RoutingInstance, error) {
			return m.store.CreateRoutingInstance(ctx, fqName)
		},
	}
	ri, created, err := op.Execute(ctx)
	if err != nil {
		return nil, false, err
	}
	if created {
		m.log.Info("created routing instance", "instance", name, "network", vn.UUID, "uuid", ri.UUID)
	}
	return ri, created, nil
}

// UpdateAssociation adds or removes the reference from ri to rt in a single
// ref-update call.
func (m *Manager) UpdateAssociation(ctx context.Context, ri *contrail.RoutingInstance, rt *contrail.RouteTarget,
	op contrail.Operation, dir contrail.Direction,
) error {
	err := m.store.UpdateRef(ctx, contrail.RefUpdate{
		InstanceUUID: ri.UUID,
		TargetUUID:   rt.UUID,
		TargetFQName: rt.FQName,
		Operation:    op,
		Direction:    dir,
	})
	if err != nil {
		return fmt.Errorf("failed to %s route target %s on routing instance %s: %w", op, rt.Key(), ri.UUID, err)
	}
	m.log.V(1).Info("updated association", "operation", op, "instance", ri.UUID, "target", rt.Key(), "direction", dir.String())
	return nil
}

// DeleteInstanceIfEmpty deletes ri when it is not vn's primary instance and
// holds no route-target references after a fresh read.
func (m *Manager) DeleteInstanceIfEmpty(ctx context.Context, vn *contrail.VirtualNetwork, ri *contrail.RoutingInstance) (bool, error) {
	if vn.IsPrimary(ri.UUID) {
		return false, nil
	}
	current, err := m.store.GetRoutingInstance(ctx, ri.UUID)
	if contrail.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(current.RouteTargetRefs) > 0 {
		m.log.V(1).Info("keeping routing instance with remaining targets", "instance", ri.UUID, "targets", len(current.RouteTargetRefs))
		return false, nil
	}
	op := &contrail.DeleteOperation{
		Name:         ri.UUID,
		ResourceType: contrail.KindRoutingInstance,
		ID:           ri.UUID,
		Delete:       m.store.DeleteRoutingInstance,
	}
	deleted, err := op.Execute(ctx)
	if deleted {
		m.log.Info("deleted empty routing instance", "instance", ri.UUID)
	}
	return deleted, err
}

// DeleteTargetIfUnreferenced attempts to delete rt. The store rejects the
// delete with a conflict while references remain; that error is returned
// for the caller to report.
func (m *Manager) DeleteTargetIfUnreferenced(ctx context.Context, rt *contrail.RouteTarget) (bool, error) {
	op := &contrail.DeleteOperation{
		Name:         rt.Key(),
		ResourceType: contrail.KindRouteTarget,
		ID:           rt.UUID,
		Delete:       m.store.DeleteRouteTarget,
	}
	deleted, err := op.Execute(ctx)
	if deleted {
		m.log.Info("deleted route target", "target", rt.Key(), "uuid", rt.UUID)
	}
	return deleted, err
}
