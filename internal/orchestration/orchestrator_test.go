package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/rtctl/internal/config"
	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/platform/contrail/fake"
	"github.com/imamik/rtctl/internal/routetarget"
)

const (
	blueName = "default-domain:demo:blue"
	redName  = "default-domain:demo:red"
)

type fixture struct {
	store  *fake.Store
	client *contrail.RealClient
	orch   *Orchestrator
	blue   string
	red    string
	sleeps []time.Duration
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{store: fake.NewStore(t)}
	f.blue = f.store.AddNetwork([]string{"default-domain", "demo", "blue"}, "")
	f.red = f.store.AddNetwork([]string{"default-domain", "demo", "red"}, "")
	f.client = contrail.NewRealClient(f.store.URL(), contrail.Credentials{Token: "t"},
		contrail.WithTimeouts(config.TestTimeouts()))
	f.orch = f.newOrchestrator(f.client, opts...)
	f.store.ResetCalls()
	return f
}

func (f *fixture) newOrchestrator(store contrail.ConfigStore, opts ...Option) *Orchestrator {
	base := []Option{
		WithAllocator(routetarget.NewAllocator(routetarget.NoJitter)),
		WithLogger(logr.Discard()),
		withSleeper(func(_ context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return nil
		}),
	}
	return New(store, append(base, opts...)...)
}

func (f *fixture) writes() int {
	return f.store.CountCalls(http.MethodPost, "/ref-update") +
		f.store.CountCalls(http.MethodPost, "/route-targets") +
		f.store.CountCalls(http.MethodPost, "/routing-instances") +
		f.store.CountCalls(http.MethodDelete, "/")
}

// flakyRefs fails the n-th ref-update with a store error.
type flakyRefs struct {
	contrail.ConfigStore
	failOn int
	calls  int
}

func (s *flakyRefs) UpdateRef(ctx context.Context, u contrail.RefUpdate) error {
	s.calls++
	if s.calls == s.failOn {
		return &contrail.APIError{Method: http.MethodPost, Path: "/ref-update", StatusCode: 503, Body: "overloaded"}
	}
	return s.ConfigStore.UpdateRef(ctx, u)
}

// danglingTargets hides the keys carried on route-target refs and reports
// the listed targets as deleted.
type danglingTargets struct {
	contrail.ConfigStore
	gone map[string]bool
}

func (s *danglingTargets) GetRoutingInstance(ctx context.Context, id string) (*contrail.RoutingInstance, error) {
	ri, err := s.ConfigStore.GetRoutingInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range ri.RouteTargetRefs {
		ri.RouteTargetRefs[i].FQName = nil
	}
	return ri, nil
}

func (s *danglingTargets) GetRouteTarget(ctx context.Context, id string) (*contrail.RouteTarget, error) {
	if s.gone[id] {
		return nil, &contrail.APIError{Method: http.MethodGet, Path: "/route-target/" + id, StatusCode: http.StatusNotFound}
	}
	return s.ConfigStore.GetRouteTarget(ctx, id)
}

// --- Enable ---

func TestEnable_WithTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"})
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, "target:64512:500", res.Target)
	assert.True(t, res.TargetCreated)
	require.Len(t, res.Sides, 2)
	assert.Equal(t, SideLeft, res.Sides[0].Side)
	assert.Equal(t, OutcomeLinked, res.Sides[0].Outcome)
	assert.Equal(t, OutcomeLinked, res.Sides[1].Outcome)
	assert.Equal(t, "both", res.Sides[0].Direction)

	assert.Equal(t, map[string]string{"target:64512:500": ""}, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)))
	assert.Equal(t, map[string]string{"target:64512:500": ""}, f.store.InstanceTargets(f.store.PrimaryInstance(f.red)))

	require.Len(t, res.Networks, 2)
	assert.Equal(t, "target:64512:500", res.Networks[0].Instances[0].Targets[0].Key)
	assert.Empty(t, res.Warnings)
}

func TestEnable_Converges(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	req := RoutingRequest{Left: blueName, Right: redName, Target: "target:64512:500"}

	_, err := f.orch.Enable(ctx, req)
	require.NoError(t, err)
	afterFirst := f.store.CountCalls(http.MethodPost, "/ref-update")

	res, err := f.orch.Enable(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.TargetCreated)
	assert.Equal(t, OutcomeAlreadyLinked, res.Sides[0].Outcome)
	assert.Equal(t, OutcomeAlreadyLinked, res.Sides[1].Outcome)
	assert.Equal(t, afterFirst, f.store.CountCalls(http.MethodPost, "/ref-update"), "second run issues no ref-update")
	assert.Equal(t, 1, f.store.TargetCount())
	assert.Len(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)), 1)
}

func TestEnable_DerivesTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	existing := f.store.AddRouteTarget("target:64512:100")
	f.store.Link(f.store.PrimaryInstance(f.blue), existing, "")

	res, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.NoError(t, err)
	assert.Equal(t, "target:64512:10100", res.Target)
	assert.Contains(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)), "target:64512:10100")
	assert.Contains(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.red)), "target:64512:10100")
}

func TestEnable_PrecursorMissing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.ErrorIs(t, err, contrail.ErrPrecursorMissing)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateResolving, res.Reached)
	assert.Zero(t, f.writes())
}

func TestEnable_DeriveSkipsDeletedTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	primary := f.store.PrimaryInstance(f.blue)
	deleted := f.store.AddRouteTarget("target:64512:100")
	live := f.store.AddRouteTarget("target:64512:200")
	f.store.Link(primary, deleted, "")
	f.store.Link(primary, live, "")
	orch := f.newOrchestrator(&danglingTargets{ConfigStore: f.client, gone: map[string]bool{deleted: true}})

	res, err := orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.NoError(t, err)
	assert.Equal(t, "target:64512:10200", res.Target)
}

func TestEnable_DeriveWithOnlyDeletedTargets(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	deleted := f.store.AddRouteTarget("target:64512:100")
	f.store.Link(f.store.PrimaryInstance(f.blue), deleted, "")
	orch := f.newOrchestrator(&danglingTargets{ConfigStore: f.client, gone: map[string]bool{deleted: true}})

	res, err := orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.ErrorIs(t, err, contrail.ErrPrecursorMissing)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, f.writes())
}

func TestEnable_UnknownNetwork(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: "default-domain:demo:nope", Target: "1:1"})
	require.ErrorIs(t, err, contrail.ErrNotFound)
	assert.Contains(t, err.Error(), "right network")
	assert.Zero(t, f.writes())
}

func TestEnable_MalformedTargetMakesNoCalls(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "not-a-key"})
	require.ErrorIs(t, err, contrail.ErrInvalidArgument)
	assert.Zero(t, f.store.CallCount())
}

func TestEnable_PartialFailureThenRerun(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flaky := &flakyRefs{ConfigStore: f.client, failOn: 2}
	orch := f.newOrchestrator(flaky)
	req := RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"}

	res, err := orch.Enable(context.Background(), req)
	require.ErrorIs(t, err, contrail.ErrStoreUnavailable)
	assert.Equal(t, "overloaded", contrail.RawPayload(err))
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateLeftLinked, res.Reached)
	assert.Contains(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)), "target:64512:500", "left side stays linked")
	assert.Empty(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.red)))

	res, err = orch.Enable(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyLinked, res.Sides[0].Outcome)
	assert.Equal(t, OutcomeLinked, res.Sides[1].Outcome)
	assert.Contains(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.red)), "target:64512:500")
}

func TestEnable_NamedInstance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "1:9", RoutingInstance: "peer"})
	require.NoError(t, err)
	assert.True(t, res.Sides[0].InstanceCreated)
	assert.Equal(t, "peer", res.Sides[0].InstanceName)
	require.Len(t, f.store.Instances(f.blue), 2)
	assert.Contains(t, f.store.InstanceTargets(f.store.Instances(f.blue)[1]), "target:1:9")
	assert.Empty(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)))
}

// --- Disable ---

func TestDisable_RemovesAssociationsAndTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t, WithSettleDelay(2*time.Second))
	ctx := context.Background()
	req := RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"}

	_, err := f.orch.Enable(ctx, req)
	require.NoError(t, err)

	res, err := f.orch.Disable(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, OutcomeUnlinked, res.Sides[0].Outcome)
	assert.Equal(t, OutcomeUnlinked, res.Sides[1].Outcome)
	assert.True(t, res.TargetDeleted)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []time.Duration{2 * time.Second}, f.sleeps)
	assert.Empty(t, f.store.TargetID("target:64512:500"))
	assert.True(t, f.store.HasInstance(f.store.PrimaryInstance(f.blue)))
}

func TestDisable_NotAssociated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.AddRouteTarget("target:64512:500")

	res, err := f.orch.Disable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAbsent, res.Sides[0].Outcome)
	assert.Equal(t, OutcomeAlreadyAbsent, res.Sides[1].Outcome)
	assert.Zero(t, f.store.CountCalls(http.MethodPost, "/ref-update"))
	assert.Zero(t, f.store.CountCalls(http.MethodDelete, "/routing-instance"))
	assert.True(t, f.store.HasInstance(f.store.PrimaryInstance(f.blue)))
	assert.True(t, f.store.HasInstance(f.store.PrimaryInstance(f.red)))
}

func TestDisable_UnknownTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.orch.Disable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"})
	require.ErrorIs(t, err, contrail.ErrNotFound)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, f.writes())
	assert.Zero(t, f.store.TargetCount(), "disable never creates")
}

func TestDisable_CommonTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	onlyBlue := f.store.AddRouteTarget("target:1:1")
	shared := f.store.AddRouteTarget("target:1:2")
	f.store.Link(f.store.PrimaryInstance(f.blue), onlyBlue, "")
	f.store.Link(f.store.PrimaryInstance(f.blue), shared, "")
	f.store.Link(f.store.PrimaryInstance(f.red), shared, "")

	res, err := f.orch.Disable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.NoError(t, err)
	assert.Equal(t, "target:1:2", res.Target)
	assert.Equal(t, map[string]string{"target:1:1": ""}, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)))
	assert.Empty(t, f.store.InstanceTargets(f.store.PrimaryInstance(f.red)))
}

func TestDisable_NoCommonTargetIsNoOp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.Link(f.store.PrimaryInstance(f.blue), f.store.AddRouteTarget("target:1:1"), "")

	res, err := f.orch.Disable(context.Background(), RoutingRequest{Left: blueName, Right: redName})
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, res.Sides)
	assert.Zero(t, f.writes())
	assert.Len(t, res.Networks, 2)
}

func TestDisable_DeletesEmptiedNamedInstance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	req := RoutingRequest{Left: blueName, Right: redName, Target: "1:9", RoutingInstance: "peer"}

	_, err := f.orch.Enable(ctx, req)
	require.NoError(t, err)
	require.Len(t, f.store.Instances(f.blue), 2)

	res, err := f.orch.Disable(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Sides[0].InstanceDeleted)
	assert.True(t, res.Sides[1].InstanceDeleted)
	assert.Len(t, f.store.Instances(f.blue), 1)
	assert.Len(t, f.store.Instances(f.red), 1)
}

func TestDisable_NeverDeletesPrimary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	// Naming the primary instance explicitly must not make it deletable.
	req := RoutingRequest{Left: blueName, Right: redName, Target: "1:9", RoutingInstance: "blue"}
	rt := f.store.AddRouteTarget("target:1:9")
	f.store.Link(f.store.PrimaryInstance(f.blue), rt, "")

	res, err := f.orch.Disable(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnlinked, res.Sides[0].Outcome)
	assert.False(t, res.Sides[0].InstanceDeleted)
	assert.Equal(t, OutcomeSkipped, res.Sides[1].Outcome, "red has no instance named blue")
	assert.True(t, f.store.HasInstance(f.store.PrimaryInstance(f.blue)))
	assert.Zero(t, f.store.CountCalls(http.MethodDelete, "/routing-instance"))
}

func TestDisable_TargetStillReferencedIsWarning(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	green := f.store.AddNetwork([]string{"default-domain", "demo", "green"}, "")
	req := RoutingRequest{Left: blueName, Right: redName, Target: "64512:500"}

	_, err := f.orch.Enable(ctx, req)
	require.NoError(t, err)
	f.store.Link(f.store.PrimaryInstance(green), f.store.TargetID("target:64512:500"), "")

	res, err := f.orch.Disable(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.False(t, res.TargetDeleted)
	require.Len(t, res.Warnings, 1)
	assert.True(t, IsWarning(res.Warnings[0]))
	assert.ErrorIs(t, res.Warnings[0], contrail.ErrConflict)
	assert.NotEmpty(t, f.store.TargetID("target:64512:500"))
}

func TestDisable_SettleInterrupted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, withSleeper(func(context.Context, time.Duration) error { return context.Canceled }))
	rt := f.store.AddRouteTarget("target:1:9")
	f.store.Link(f.store.PrimaryInstance(f.blue), rt, "")

	res, err := f.orch.Disable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "1:9"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateRightLinked, res.Reached)
	assert.NotEmpty(t, f.store.TargetID("target:1:9"))
}

// --- Add / remove route target ---

func TestAddRouteTarget_InvalidDirectionMakesNoCalls(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.orch.AddRouteTarget(context.Background(), RouteTargetRequest{Network: blueName, Target: "1:1", Direction: "north"})
	require.ErrorIs(t, err, contrail.ErrInvalidArgument)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, f.store.CallCount())
}

func TestAddRouteTarget_RequiresTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.orch.AddRouteTarget(context.Background(), RouteTargetRequest{Network: blueName})
	require.ErrorIs(t, err, contrail.ErrInvalidArgument)
	assert.Zero(t, f.store.CallCount())
}

func TestAddRouteTarget_Direction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.orch.AddRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1", Direction: "export"})
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, OutcomeLinked, res.Sides[0].Outcome)
	assert.Equal(t, map[string]string{"target:1:1": "export"}, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)))

	res, err = f.orch.AddRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1", Direction: "export"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyLinked, res.Sides[0].Outcome)

	res, err = f.orch.AddRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1", Direction: "import"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinked, res.Sides[0].Outcome)
	assert.Equal(t, map[string]string{"target:1:1": "import"}, f.store.InstanceTargets(f.store.PrimaryInstance(f.blue)))
}

func TestRemoveRouteTarget(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.AddRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1", RoutingInstance: "peer"})
	require.NoError(t, err)

	res, err := f.orch.RemoveRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1", RoutingInstance: "peer"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnlinked, res.Sides[0].Outcome)
	assert.True(t, res.Sides[0].InstanceDeleted)
	assert.True(t, res.TargetDeleted)
	assert.Len(t, f.sleeps, 1)
	assert.Zero(t, f.store.TargetCount())

	_, err = f.orch.RemoveRouteTarget(ctx, RouteTargetRequest{Network: blueName, Target: "1:1"})
	require.ErrorIs(t, err, contrail.ErrNotFound)
}

// --- Result and metrics ---

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	res := newResult(OpDisableRouting)
	res.warn(errors.New("route target left in place"))
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "disable-routing", decoded["operation"])
	assert.Equal(t, []any{"route target left in place"}, decoded["warnings"])
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	f := newFixture(t, WithMetrics(m))

	_, err := f.orch.Enable(context.Background(), RoutingRequest{Left: blueName, Right: redName, Target: "1:1"})
	require.NoError(t, err)
	_, err = f.orch.Enable(context.Background(), RoutingRequest{Left: "default-domain:demo:nope", Right: redName, Target: "1:1"})
	require.ErrorIs(t, err, contrail.ErrNotFound)

	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues(OpEnableRouting, "DONE", "DONE")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues(OpEnableRouting, "FAILED", "RESOLVING")), 0)
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	require.NoError(t, sleepContext(context.Background(), 0))
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
