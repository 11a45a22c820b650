package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockLost is returned by an UnlockFunc when the lock expired and may
// have been taken by another instance before it was released.
var ErrLockLost = errors.New("distributed lock expired before release")

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on one session across server replicas,
// so two requests carrying the same session cookie never interleave their
// load, fire and save steps.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
