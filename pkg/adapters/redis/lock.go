package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when ctx ends before the lock is acquired.
var ErrLockAcquire = errors.New("failed to acquire distributed lock")

// releaseScript deletes the lock key only while it still holds the owner token.
var releaseScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Locker implements ports.DistributedLocker with SET NX PX on a per-session key.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets how often a contended lock is polled.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// NewLocker creates a locker whose keys are prefix + "lock:" + session id.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) key(sessionID string) string {
	return l.prefix + "lock:" + sessionID
}

// Lock implements ports.DistributedLocker.
func (l *Locker) Lock(ctx context.Context, sessionID string, ttl time.Duration) (ports.UnlockFunc, error) {
	key := l.key(sessionID)
	owner := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, owner, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error locking session %s: %w", sessionID, err)
		}
		if ok {
			return l.releaser(key, owner), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w for session %s: %w", ErrLockAcquire, sessionID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(key, owner string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, owner).Int64()
		if err != nil {
			return fmt.Errorf("redis error unlocking %s: %w", key, err)
		}
		if n == 0 {
			return ports.ErrLockLost
		}
		return nil
	}
}
