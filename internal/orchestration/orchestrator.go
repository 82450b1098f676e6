package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/rtctl/internal/association"
	"github.com/imamik/rtctl/internal/inventory"
	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/routetarget"
)

// DefaultSettleDelay is the wait before deleting a route target whose
// references were just removed, giving the store time to update its
// reference counts.
const DefaultSettleDelay = 3 * time.Second

// RoutingRequest selects two networks for enable or disable routing.
type RoutingRequest struct {
	Left            string
	Right           string
	Target          string
	RoutingInstance string
}

// RouteTargetRequest selects one network for add or remove route target.
type RouteTargetRequest struct {
	Network         string
	Target          string
	RoutingInstance string
	Direction       string
}

// Orchestrator runs connectivity operations against a config store.
type Orchestrator struct {
	assoc       *association.Manager
	inventory   *inventory.Reader
	allocator   *routetarget.Allocator
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	metrics     *Metrics
	log         logr.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAllocator sets the allocator used to derive route-target keys.
func WithAllocator(a *routetarget.Allocator) Option {
	return func(o *Orchestrator) {
		o.allocator = a
	}
}

// WithSettleDelay sets the wait before target deletion.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.settleDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMetrics records operation outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// withSleeper replaces the settle wait, for tests.
func withSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// New creates an orchestrator backed by store.
func New(store contrail.ConfigStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		allocator:   routetarget.NewAllocator(routetarget.RandomJitter),
		settleDelay: DefaultSettleDelay,
		sleep:       sleepContext,
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.assoc = association.NewManager(store, o.log)
	o.inventory = inventory.NewReader(store, o.log)
	return o
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fail marks res failed and records the outcome.
func (o *Orchestrator) fail(res *Result, err error) (*Result, error) {
	res.State = StateFailed
	o.log.V(1).Info("operation failed", "operation", res.Operation, "reached", res.Reached, "error", err.Error())
	o.metrics.record(res)
	return res, err
}

// finish re-reads the given networks and completes res.
func (o *Orchestrator) finish(ctx context.Context, res *Result, networkIDs ...string) (*Result, error) {
	seen := make(map[string]bool)
	for _, id := range networkIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		view, err := o.inventory.Network(ctx, id)
		if err != nil {
			res.warn(fmt.Errorf("%w: final state of virtual-network %s could not be read: %w",
				contrail.ErrPartialCompletion, id, err))
			continue
		}
		res.Networks = append(res.Networks, *view)
	}
	res.advance(StateDone)
	for _, w := range res.Warnings {
		o.log.Info("warning", "operation", res.Operation, "detail", w.Error())
	}
	o.metrics.record(res)
	return res, nil
}

// normalizeTarget validates an optional user-supplied key.
func normalizeTarget(target string) (string, error) {
	if target == "" {
		return "", nil
	}
	return routetarget.Normalize(target)
}

// link associates rt with the selected instance of vn in direction dir.
func (o *Orchestrator) link(ctx context.Context, side string, vn *contrail.VirtualNetwork, instance string,
	rt *contrail.RouteTarget, dir contrail.Direction,
) (SideResult, error) {
	sr := newSide(side, vn)
	sr.Direction = dir.String()

	ri, created, err := o.assoc.GetOrCreateInstance(ctx, vn, instance)
	if err != nil {
		return sr, err
	}
	sr.Instance, sr.InstanceName, sr.InstanceCreated = ri.UUID, instanceName(ri), created

	if ref, ok := ri.TargetRef(rt.UUID); ok && ref.Direction() == dir {
		sr.Outcome = OutcomeAlreadyLinked
		o.log.V(1).Info("association already present", "side", side, "instance", ri.UUID, "target", rt.Key())
		return sr, nil
	}
	if err := o.assoc.UpdateAssociation(ctx, ri, rt, contrail.OperationAdd, dir); err != nil {
		return sr, err
	}
	sr.Outcome = OutcomeLinked
	return sr, nil
}

// unlink removes the association between rt and the selected instance of
// vn, deleting the instance when it is a non-primary instance left empty.
// A failed instance deletion becomes a warning on res.
func (o *Orchestrator) unlink(ctx context.Context, res *Result, side string, vn *contrail.VirtualNetwork, instance string,
	rt *contrail.RouteTarget,
) (SideResult, error) {
	sr := newSide(side, vn)

	ri, err := o.assoc.FindInstance(ctx, vn, instance)
	if instance != "" && contrail.IsNotFound(err) {
		o.log.Info("routing instance not found, skipping side", "side", side, "network", vn.UUID, "instance", instance)
		sr.InstanceName = instance
		sr.Outcome = OutcomeSkipped
		return sr, nil
	}
	if err != nil {
		return sr, err
	}
	sr.Instance, sr.InstanceName = ri.UUID, instanceName(ri)

	if _, ok := ri.TargetRef(rt.UUID); !ok {
		sr.Outcome = OutcomeAlreadyAbsent
		o.log.V(1).Info("association already absent", "side", side, "instance", ri.UUID, "target", rt.Key())
		return sr, nil
	}
	if err := o.assoc.UpdateAssociation(ctx, ri, rt, contrail.OperationDelete, contrail.DirectionBoth); err != nil {
		return sr, err
	}
	sr.Outcome = OutcomeUnlinked

	deleted, err := o.assoc.DeleteInstanceIfEmpty(ctx, vn, ri)
	sr.InstanceDeleted = deleted
	if err != nil {
		res.warn(fmt.Errorf("%w: routing instance %s left in place: %w", contrail.ErrPartialCompletion, ri.UUID, err))
	}
	return sr, nil
}

// reclaimTarget waits the settle delay and then tries to delete rt.
func (o *Orchestrator) reclaimTarget(ctx context.Context, res *Result, rt *contrail.RouteTarget) error {
	if err := o.sleep(ctx, o.settleDelay); err != nil {
		return fmt.Errorf("settle delay interrupted: %w", err)
	}
	deleted, err := o.assoc.DeleteTargetIfUnreferenced(ctx, rt)
	res.TargetDeleted = deleted
	if err != nil {
		res.warn(fmt.Errorf("%w: route target %s left in place: %w", contrail.ErrPartialCompletion, rt.Key(), err))
	}
	return nil
}

func newSide(side string, vn *contrail.VirtualNetwork) SideResult {
	return SideResult{Side: side, Network: vn.UUID, NetworkName: strings.Join(vn.FQName, ":")}
}

func instanceName(ri *contrail.RoutingInstance) string {
	if len(ri.FQName) == 0 {
		return ""
	}
	return ri.FQName[len(ri.FQName)-1]
}

// IsWarning reports whether err is a partial-completion warning.
func IsWarning(err error) bool {
	return errors.Is(err, contrail.ErrPartialCompletion)
}
