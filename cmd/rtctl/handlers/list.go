package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/rtctl/internal/inventory"
	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/routetarget"
)

// ListOptions narrow the list command.
type ListOptions struct {
	Target          string
	RoutingInstance string
	TenantID        string
}

// List prints networks with their routing instances and route targets.
// A target limits the output to the networks referencing it; a routing
// instance selects the network owning it. Otherwise all networks of the
// configured tenant are shown.
func List(ctx context.Context, g Globals, opts ListOptions) error {
	if opts.TenantID != "" {
		g.TenantID = opts.TenantID
	}
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	reader := inventory.NewReader(s.store, s.log)
	resolver := contrail.NewResolver(s.store)

	var views []inventory.NetworkView
	switch {
	case opts.Target != "":
		id, err := resolveTarget(ctx, resolver, opts.Target)
		if err != nil {
			return err
		}
		if views, err = reader.NetworksByTarget(ctx, id); err != nil {
			return err
		}
	case opts.RoutingInstance != "":
		id, err := resolver.Resolve(ctx, opts.RoutingInstance, contrail.KindRoutingInstance)
		if err != nil {
			return err
		}
		view, err := reader.NetworkByInstance(ctx, id)
		if err != nil {
			return err
		}
		views = []inventory.NetworkView{*view}
	default:
		if views, err = reader.Networks(ctx, s.cfg.TenantUUID()); err != nil {
			return err
		}
	}
	return writeNetworks(stdout, s.cfg.Output, views)
}

// Show prints one network.
func Show(ctx context.Context, g Globals, network string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	id, err := contrail.NewResolver(s.store).Resolve(ctx, network, contrail.KindVirtualNetwork)
	if err != nil {
		return err
	}
	view, err := inventory.NewReader(s.store, s.log).Network(ctx, id)
	if err != nil {
		return err
	}
	return writeNetworks(stdout, s.cfg.Output, []inventory.NetworkView{*view})
}

// resolveTarget accepts a route-target uuid or key, with or without the
// target: scheme.
func resolveTarget(ctx context.Context, resolver *contrail.Resolver, ref string) (string, error) {
	if contrail.IsUUID(ref) {
		return ref, nil
	}
	key, err := routetarget.Normalize(ref)
	if err != nil {
		return "", fmt.Errorf("list by target: %w", err)
	}
	return resolver.Resolve(ctx, key, contrail.KindRouteTarget)
}
