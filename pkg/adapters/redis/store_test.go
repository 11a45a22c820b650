package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunJourneyStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTLResetOnWrite(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(10*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "apply", "apply~00000001"))
	mr.FastForward(8 * time.Second)

	// Writing another journey keeps the whole session alive.
	require.NoError(t, store.Save(ctx, "s1", "renew", "renew~00000001"))
	mr.FastForward(8 * time.Second)

	token, err := store.Load(ctx, "s1", "apply")
	require.NoError(t, err)
	assert.Equal(t, "apply~00000001", token)

	mr.FastForward(3 * time.Second)
	_, err = store.Load(ctx, "s1", "apply")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-session", "apply", "apply~00000001"))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.Equal(t, "apply~00000001", mr.HGet("custom:app:my-session", "apply"))

	require.NoError(t, store.Delete(ctx, "my-session", "apply"))
	assert.False(t, mr.Exists("custom:app:my-session"), "Expected empty session hash to disappear")
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Load(context.Background(), "s1", "apply")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrJourneyNotFound)
}
