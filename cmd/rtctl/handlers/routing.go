package handlers

import (
	"context"

	"github.com/imamik/rtctl/internal/orchestration"
)

// EnableRouting connects two networks through a shared route target.
func EnableRouting(ctx context.Context, g Globals, req orchestration.RoutingRequest) error {
	return runOperation(ctx, g, func(ctx context.Context, o *orchestration.Orchestrator) (*orchestration.Result, error) {
		return o.Enable(ctx, req)
	})
}

// DisableRouting disconnects two networks.
func DisableRouting(ctx context.Context, g Globals, req orchestration.RoutingRequest) error {
	return runOperation(ctx, g, func(ctx context.Context, o *orchestration.Orchestrator) (*orchestration.Result, error) {
		return o.Disable(ctx, req)
	})
}

// AddRouteTarget associates a route target with one network.
func AddRouteTarget(ctx context.Context, g Globals, req orchestration.RouteTargetRequest) error {
	return runOperation(ctx, g, func(ctx context.Context, o *orchestration.Orchestrator) (*orchestration.Result, error) {
		return o.AddRouteTarget(ctx, req)
	})
}

// RemoveRouteTarget removes a route target from one network.
func RemoveRouteTarget(ctx context.Context, g Globals, req orchestration.RouteTargetRequest) error {
	return runOperation(ctx, g, func(ctx context.Context, o *orchestration.Orchestrator) (*orchestration.Result, error) {
		return o.RemoveRouteTarget(ctx, req)
	})
}
