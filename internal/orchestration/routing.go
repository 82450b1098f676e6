package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/rtctl/internal/platform/contrail"
)

// Enable connects two networks through a shared route target. Without a
// target in req, the key is derived from the first route target of the left
// network's primary instance.
func (o *Orchestrator) Enable(ctx context.Context, req RoutingRequest) (*Result, error) {
	res := newResult(OpEnableRouting)

	key, err := normalizeTarget(req.Target)
	if err != nil {
		return o.fail(res, err)
	}
	left, right, err := o.resolvePair(ctx, req)
	if err != nil {
		return o.fail(res, err)
	}

	if key == "" {
		if key, err = o.deriveTarget(ctx, left); err != nil {
			return o.fail(res, err)
		}
	}
	res.Target = key

	rt, created, err := o.assoc.GetOrCreateTarget(ctx, key)
	if err != nil {
		return o.fail(res, err)
	}
	res.TargetUUID, res.TargetCreated = rt.UUID, created
	res.advance(StateTargetReady)

	for _, step := range pairSteps(left, right) {
		sr, err := o.link(ctx, step.side, step.network, req.RoutingInstance, rt, contrail.DirectionBoth)
		if err != nil {
			return o.fail(res, fmt.Errorf("%s side: %w", step.side, err))
		}
		res.Sides = append(res.Sides, sr)
		res.advance(step.state)
	}
	return o.finish(ctx, res, left.UUID, right.UUID)
}

// Disable disconnects two networks. Without a target in req, the first key
// common to both networks' instances is used; when there is none the result
// is a no-op.
func (o *Orchestrator) Disable(ctx context.Context, req RoutingRequest) (*Result, error) {
	res := newResult(OpDisableRouting)

	key, err := normalizeTarget(req.Target)
	if err != nil {
		return o.fail(res, err)
	}
	left, right, err := o.resolvePair(ctx, req)
	if err != nil {
		return o.fail(res, err)
	}

	if key == "" {
		if key, err = o.commonTarget(ctx, left, right, req.RoutingInstance); err != nil {
			return o.fail(res, err)
		}
		if key == "" {
			o.log.Info("no common route target, nothing to disable", "left", left.UUID, "right", right.UUID)
			res.NoOp = true
			return o.finish(ctx, res, left.UUID, right.UUID)
		}
	}
	res.Target = key

	rt, err := o.assoc.FindTarget(ctx, key)
	if err != nil {
		return o.fail(res, err)
	}
	res.TargetUUID = rt.UUID
	res.advance(StateTargetReady)

	for _, step := range pairSteps(left, right) {
		sr, err := o.unlink(ctx, res, step.side, step.network, req.RoutingInstance, rt)
		if err != nil {
			return o.fail(res, fmt.Errorf("%s side: %w", step.side, err))
		}
		res.Sides = append(res.Sides, sr)
		res.advance(step.state)
	}

	if err := o.reclaimTarget(ctx, res, rt); err != nil {
		return o.fail(res, err)
	}
	return o.finish(ctx, res, left.UUID, right.UUID)
}

type pairStep struct {
	side    string
	network *contrail.VirtualNetwork
	state   State
}

// pairSteps fixes the left-before-right order.
func pairSteps(left, right *contrail.VirtualNetwork) []pairStep {
	return []pairStep{
		{side: SideLeft, network: left, state: StateLeftLinked},
		{side: SideRight, network: right, state: StateRightLinked},
	}
}

func (o *Orchestrator) resolvePair(ctx context.Context, req RoutingRequest) (*contrail.VirtualNetwork, *contrail.VirtualNetwork, error) {
	left, err := o.assoc.ResolveNetwork(ctx, req.Left)
	if err != nil {
		return nil, nil, fmt.Errorf("left network: %w", err)
	}
	right, err := o.assoc.ResolveNetwork(ctx, req.Right)
	if err != nil {
		return nil, nil, fmt.Errorf("right network: %w", err)
	}
	return left, right, nil
}

func (o *Orchestrator) deriveTarget(ctx context.Context, left *contrail.VirtualNetwork) (string, error) {
	primary, err := o.assoc.PrimaryInstance(ctx, left)
	if err != nil {
		return "", err
	}
	var existing string
	for _, ref := range primary.RouteTargetRefs {
		k, err := o.assoc.TargetKey(ctx, ref)
		if contrail.IsNotFound(err) {
			o.log.Info("skipping unreadable route target", "instance", primary.UUID, "target", ref.UUID)
			continue
		}
		if err != nil {
			return "", err
		}
		existing = k
		break
	}
	if existing == "" {
		return "", fmt.Errorf("%w: no target given and virtual-network %s has no route target to derive one from",
			contrail.ErrPrecursorMissing, left.UUID)
	}
	key, err := o.allocator.DeriveNext(existing)
	if err != nil {
		return "", err
	}
	o.log.Info("derived route target", "from", existing, "target", key)
	return key, nil
}

// commonTarget returns the first key, in left-side order, associated with
// the selected instance on both networks, or "" when there is none.
func (o *Orchestrator) commonTarget(ctx context.Context, left, right *contrail.VirtualNetwork, instance string) (string, error) {
	leftKeys, err := o.instanceKeys(ctx, left, instance)
	if err != nil {
		return "", err
	}
	rightKeys, err := o.instanceKeys(ctx, right, instance)
	if err != nil {
		return "", err
	}
	onRight := make(map[string]bool, len(rightKeys))
	for _, k := range rightKeys {
		onRight[k] = true
	}
	for _, k := range leftKeys {
		if onRight[k] {
			return k, nil
		}
	}
	return "", nil
}

func (o *Orchestrator) instanceKeys(ctx context.Context, vn *contrail.VirtualNetwork, instance string) ([]string, error) {
	ri, err := o.assoc.FindInstance(ctx, vn, instance)
	if instance != "" && contrail.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ri.RouteTargetRefs))
	for _, ref := range ri.RouteTargetRefs {
		key, err := o.assoc.TargetKey(ctx, ref)
		if contrail.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
