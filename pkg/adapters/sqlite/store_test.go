package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunJourneyStoreContract(t, newTestStore(t))
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	require.NoError(t, store.Save(ctx, "s1", "old", "old~00000001"))

	clock = clock.Add(2 * time.Hour)
	require.NoError(t, store.Save(ctx, "s1", "fresh", "fresh~00000001"))

	n, err := store.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Load(ctx, "s1", "old")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

	token, err := store.Load(ctx, "s1", "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh~00000001", token)
}

func TestSQLiteStore_SchemaIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), "s1", "apply", "apply~00000001"))

	again, err := New(context.Background(), store.db)
	require.NoError(t, err)

	token, err := again.Load(context.Background(), "s1", "apply")
	require.NoError(t, err)
	assert.Equal(t, "apply~00000001", token)
}
