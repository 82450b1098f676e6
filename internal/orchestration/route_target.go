package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/rtctl/internal/platform/contrail"
)

// AddRouteTarget associates a route target with one network, creating the
// target and a named instance when absent.
func (o *Orchestrator) AddRouteTarget(ctx context.Context, req RouteTargetRequest) (*Result, error) {
	res := newResult(OpAddRouteTarget)

	dir, key, err := validateRouteTargetRequest(req)
	if err != nil {
		return o.fail(res, err)
	}
	vn, err := o.assoc.ResolveNetwork(ctx, req.Network)
	if err != nil {
		return o.fail(res, err)
	}
	res.Target = key

	rt, created, err := o.assoc.GetOrCreateTarget(ctx, key)
	if err != nil {
		return o.fail(res, err)
	}
	res.TargetUUID, res.TargetCreated = rt.UUID, created
	res.advance(StateTargetReady)

	sr, err := o.link(ctx, SideNetwork, vn, req.RoutingInstance, rt, dir)
	if err != nil {
		return o.fail(res, err)
	}
	res.Sides = append(res.Sides, sr)
	res.advance(StateLeftLinked)

	return o.finish(ctx, res, vn.UUID)
}

// RemoveRouteTarget removes a route target from one network and then tries
// to delete the target.
func (o *Orchestrator) RemoveRouteTarget(ctx context.Context, req RouteTargetRequest) (*Result, error) {
	res := newResult(OpRemoveRouteTarget)

	_, key, err := validateRouteTargetRequest(req)
	if err != nil {
		return o.fail(res, err)
	}
	vn, err := o.assoc.ResolveNetwork(ctx, req.Network)
	if err != nil {
		return o.fail(res, err)
	}
	res.Target = key

	rt, err := o.assoc.FindTarget(ctx, key)
	if err != nil {
		return o.fail(res, err)
	}
	res.TargetUUID = rt.UUID
	res.advance(StateTargetReady)

	sr, err := o.unlink(ctx, res, SideNetwork, vn, req.RoutingInstance, rt)
	if err != nil {
		return o.fail(res, err)
	}
	res.Sides = append(res.Sides, sr)
	res.advance(StateLeftLinked)

	if err := o.reclaimTarget(ctx, res, rt); err != nil {
		return o.fail(res, err)
	}
	return o.finish(ctx, res, vn.UUID)
}

// validateRouteTargetRequest checks the direction and target before any
// store call.
func validateRouteTargetRequest(req RouteTargetRequest) (contrail.Direction, string, error) {
	dir, err := contrail.ParseDirection(req.Direction)
	if err != nil {
		return dir, "", err
	}
	if req.Target == "" {
		return dir, "", fmt.Errorf("%w: a route target is required", contrail.ErrInvalidArgument)
	}
	key, err := normalizeTarget(req.Target)
	return dir, key, err
}
