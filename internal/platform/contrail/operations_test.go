package contrail

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- EnsureOperation ---

func TestEnsureOperation_Exists(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[string]{
		Name:         "target:1:1",
		ResourceType: KindRouteTarget,
		Lookup:       func(context.Context) (string, error) { return "existing", nil },
		Create: func(context.Context) (string, error) {
			t.Fatal("Create should not be called for an existing resource")
			return "", nil
		},
	}

	got, created, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "existing", got)
	assert.False(t, created)
}

func TestEnsureOperation_Creates(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[string]{
		Name:         "target:1:1",
		ResourceType: KindRouteTarget,
		Lookup:       func(context.Context) (string, error) { return "", ErrNotFound },
		Create:       func(context.Context) (string, error) { return "new", nil },
	}

	got, created, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got)
	assert.True(t, created)
}

func TestEnsureOperation_ConflictRelooksUp(t *testing.T) {
	t.Parallel()

	lookups := 0
	op := &EnsureOperation[string]{
		Name:         "target:1:1",
		ResourceType: KindRouteTarget,
		Lookup: func(context.Context) (string, error) {
			lookups++
			if lookups == 1 {
				return "", ErrNotFound
			}
			return "winner", nil
		},
		Create: func(context.Context) (string, error) {
			return "loser", &APIError{StatusCode: 409}
		},
	}

	got, created, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "winner", got, "result must come from the store, not the failed create")
	assert.False(t, created)
	assert.Equal(t, 2, lookups)
}

func TestEnsureOperation_Errors(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("%w: boom", ErrStoreUnavailable)

	tests := []struct {
		name   string
		lookup func(context.Context) (string, error)
		create func(context.Context) (string, error)
		msg    string
	}{
		{
			name:   "lookup fails",
			lookup: func(context.Context) (string, error) { return "", boom },
			create: func(context.Context) (string, error) { return "", nil },
			msg:    "failed to get",
		},
		{
			name:   "create fails",
			lookup: func(context.Context) (string, error) { return "", ErrNotFound },
			create: func(context.Context) (string, error) { return "", boom },
			msg:    "failed to create",
		},
		{
			name:   "relookup fails",
			lookup: func(context.Context) (string, error) { return "", ErrNotFound },
			create: func(context.Context) (string, error) { return "", ErrConflict },
			msg:    "after conflicting create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			op := &EnsureOperation[string]{Name: "x", ResourceType: KindRouteTarget, Lookup: tt.lookup, Create: tt.create}
			_, _, err := op.Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// --- DeleteOperation ---

func TestDeleteOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		deleteErr   error
		wantDeleted bool
		wantErr     error
	}{
		{name: "deleted", wantDeleted: true},
		{name: "already gone", deleteErr: &APIError{StatusCode: 404}},
		{name: "still referenced", deleteErr: &APIError{StatusCode: 409}, wantErr: ErrConflict},
		{name: "store down", deleteErr: errors.Join(ErrStoreUnavailable), wantErr: ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			op := &DeleteOperation{
				Name:         "target:1:1",
				ResourceType: KindRouteTarget,
				ID:           "rt-1",
				Delete: func(_ context.Context, id string) error {
					assert.Equal(t, "rt-1", id)
					return tt.deleteErr
				},
			}
			deleted, err := op.Execute(context.Background())
			assert.Equal(t, tt.wantDeleted, deleted)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
