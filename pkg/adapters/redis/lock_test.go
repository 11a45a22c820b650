package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := "shared-resource"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	assert.True(t, mr.Exists("test:lock:shared-resource"))
}

func TestRedisLocker_ExpiredLockIsNotStolenBack(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	unlock2, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	// The first holder lost its lock to expiry; releasing must not free the second.
	assert.ErrorIs(t, unlock1(ctx), ports.ErrLockLost)
	assert.True(t, mr.Exists("test:lock:k"))

	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("test:lock:k"))
}

func TestRedisLocker_RetryInterval(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, "test:", redis.WithRetryInterval(5*time.Millisecond))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	released := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = unlock(ctx)
		close(released)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock2, err := locker.Lock(waitCtx, "k", 5*time.Second)
	require.NoError(t, err)
	<-released
	require.NoError(t, unlock2(ctx))
}
