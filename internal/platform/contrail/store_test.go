package contrail

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/rtctl/internal/platform/contrail/fake"
)

// Exercises the client against the in-memory store, covering the store
// semantics the higher layers rely on.
func TestRealClient_AgainstStore(t *testing.T) {
	t.Parallel()

	store := fake.NewStore(t)
	store.Token = "secret"
	tenant := "0b1c3a4e-5f60-4718-8293-a4b5c6d7e8f9"
	blue := store.AddNetwork([]string{"default-domain", "demo", "blue"}, tenant)
	store.AddNetwork([]string{"default-domain", "other", "red"}, "")
	store.AddSubnet(blue, "10.0.0.0", 24)

	c := newTestClient(store.URL())
	ctx := context.Background()

	t.Run("list filters by parent", func(t *testing.T) {
		refs, err := c.ListNetworks(ctx, tenant)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, blue, refs[0].UUID)
	})

	t.Run("network carries primary instance and subnets", func(t *testing.T) {
		vn, err := c.GetNetwork(ctx, blue)
		require.NoError(t, err)
		assert.Equal(t, []string{"default-domain", "demo", "blue"}, vn.FQName)
		assert.True(t, vn.IsPrimary(store.PrimaryInstance(blue)))
		require.Len(t, vn.Subnets(), 1)
		assert.Equal(t, "10.0.0.0/24", vn.Subnets()[0].CIDR)
	})

	t.Run("route target lifecycle", func(t *testing.T) {
		rt, err := c.CreateRouteTarget(ctx, "target:64512:10100")
		require.NoError(t, err)
		assert.NotEmpty(t, rt.UUID)

		_, err = c.CreateRouteTarget(ctx, "target:64512:10100")
		require.ErrorIs(t, err, ErrConflict)

		id, err := c.FQNameToID(ctx, KindRouteTarget, []string{"target:64512:10100"})
		require.NoError(t, err)
		assert.Equal(t, rt.UUID, id)

		primary := store.PrimaryInstance(blue)
		require.NoError(t, c.UpdateRef(ctx, RefUpdate{
			InstanceUUID: primary, TargetUUID: rt.UUID, TargetFQName: rt.FQName,
			Operation: OperationAdd, Direction: DirectionExport,
		}))

		ri, err := c.GetRoutingInstance(ctx, primary)
		require.NoError(t, err)
		ref, ok := ri.TargetRef(rt.UUID)
		require.True(t, ok)
		assert.Equal(t, DirectionExport, ref.Direction())
		assert.Equal(t, "target:64512:10100", ref.Key())

		got, err := c.GetRouteTarget(ctx, rt.UUID)
		require.NoError(t, err)
		require.Len(t, got.RoutingInstanceBackRefs, 1)
		assert.Equal(t, primary, got.RoutingInstanceBackRefs[0].UUID)

		require.ErrorIs(t, c.DeleteRouteTarget(ctx, rt.UUID), ErrConflict)

		require.NoError(t, c.UpdateRef(ctx, RefUpdate{
			InstanceUUID: primary, TargetUUID: rt.UUID, TargetFQName: rt.FQName, Operation: OperationDelete,
		}))
		require.NoError(t, c.DeleteRouteTarget(ctx, rt.UUID))
		require.ErrorIs(t, c.DeleteRouteTarget(ctx, rt.UUID), ErrNotFound)
	})

	t.Run("routing instance lifecycle", func(t *testing.T) {
		ri, err := c.CreateRoutingInstance(ctx, []string{"default-domain", "demo", "blue", "peer"})
		require.NoError(t, err)
		assert.Len(t, store.Instances(blue), 2)

		_, err = c.CreateRoutingInstance(ctx, []string{"default-domain", "demo", "missing", "peer"})
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, c.DeleteRoutingInstance(ctx, ri.UUID))
		assert.False(t, store.HasInstance(ri.UUID))
	})

	t.Run("bad token is unauthorized", func(t *testing.T) {
		bad := NewRealClient(store.URL(), Credentials{Token: "wrong"})
		_, err := bad.ListNetworks(ctx, "")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("injected failure surfaces as unavailable", func(t *testing.T) {
		store.FailNext(http.MethodPost, "/route-targets", http.StatusInternalServerError, "db down")
		_, err := c.CreateRouteTarget(ctx, "target:64512:10200")
		require.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, "db down", RawPayload(err))
	})
}
