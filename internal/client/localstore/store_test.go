package localstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "capture.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueAndPending(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"first_name":"Rosa"}`)
	require.NoError(t, store.Enqueue(ctx, Operation{
		OperationID: "op-1",
		Type:        "create_senior",
		LocalID:     "local-1",
		Payload:     payload,
	}))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "op-1", pending[0].OperationID)
	require.Equal(t, "create_senior", pending[0].Type)
	require.Equal(t, "local-1", pending[0].LocalID)
	require.JSONEq(t, string(payload), string(pending[0].Payload))
	require.Zero(t, pending[0].Attempts)
	require.Nil(t, pending[0].LastError)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestDeleteConfirmedOperation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, Operation{OperationID: "op-1", Type: "create_senior", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, store.Delete(ctx, "op-1"))

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	require.Error(t, store.Delete(ctx, "op-1"))
}

func TestMarkFailedRotatesOperationID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, Operation{OperationID: "op-1", Type: "create_senior", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, store.MarkFailed(ctx, "op-1", "op-2", "senior must be at least 60 years old"))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "op-2", pending[0].OperationID)
	require.Equal(t, 1, pending[0].Attempts)
	require.NotNil(t, pending[0].LastError)
	require.Equal(t, "senior must be at least 60 years old", *pending[0].LastError)

	require.Error(t, store.MarkFailed(ctx, "op-1", "op-3", "stale id"))
}

func TestMappingRoundtrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, found, err := store.ServerID(ctx, "local-1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.SaveMapping(ctx, "local-1", "senior", "server-1"))

	serverID, found, err := store.ServerID(ctx, "local-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "server-1", serverID)

	// Re-saving the same local id overwrites the mapping.
	require.NoError(t, store.SaveMapping(ctx, "local-1", "senior", "server-2"))
	serverID, found, err = store.ServerID(ctx, "local-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "server-2", serverID)
}

func TestCachedSeniorLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertCachedSenior(ctx, CachedSenior{
		ID:           "local-1",
		FirstName:    "Rosa",
		LastName:     "Delgado",
		BarangayCode: "041001",
		BarangayName: "Barangay Uno",
		Pending:      true,
	}))

	seniors, err := store.ListCachedSeniors(ctx)
	require.NoError(t, err)
	require.Len(t, seniors, 1)
	require.True(t, seniors[0].Pending)

	require.NoError(t, store.PromoteCachedSenior(ctx, "local-1", "server-1"))

	seniors, err = store.ListCachedSeniors(ctx)
	require.NoError(t, err)
	require.Len(t, seniors, 1)
	require.Equal(t, "server-1", seniors[0].ID)
	require.False(t, seniors[0].Pending)

	require.NoError(t, store.DeleteCachedSenior(ctx, "server-1"))
	seniors, err = store.ListCachedSeniors(ctx)
	require.NoError(t, err)
	require.Empty(t, seniors)
}

func TestUpsertCachedSeniorIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	row := CachedSenior{
		ID:           "local-1",
		FirstName:    "Rosa",
		LastName:     "Delgado",
		BarangayCode: "041001",
		BarangayName: "Barangay Uno",
		Pending:      true,
	}
	require.NoError(t, store.UpsertCachedSenior(ctx, row))

	// A second save of the same id updates in place instead of duplicating.
	row.FirstName = "Rosario"
	require.NoError(t, store.UpsertCachedSenior(ctx, row))

	seniors, err := store.ListCachedSeniors(ctx)
	require.NoError(t, err)
	require.Len(t, seniors, 1)
	require.Equal(t, "Rosario", seniors[0].FirstName)
	require.True(t, seniors[0].Pending)
}

func TestDeleteCachedSeniorAbsentIsNoOp(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertCachedSenior(ctx, CachedSenior{
		ID:           "local-1",
		FirstName:    "Rosa",
		LastName:     "Delgado",
		BarangayCode: "041001",
		BarangayName: "Barangay Uno",
	}))

	require.NoError(t, store.DeleteCachedSenior(ctx, "missing"))

	seniors, err := store.ListCachedSeniors(ctx)
	require.NoError(t, err)
	require.Len(t, seniors, 1)
	require.Equal(t, "local-1", seniors[0].ID)
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "nested", "capture.db"))
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
