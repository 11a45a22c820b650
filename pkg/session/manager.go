package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// heldKey marks a context whose caller already holds a session lock.
type heldKey struct{}

// Manager orchestrates access to the journeys stored for a session,
// serialising concurrent requests of the same session.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.JourneyStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session Manager persisting journeys in store.
func NewManager(store ports.JourneyStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load restores the named journey of the session.
// Returns domain.ErrJourneyNotFound if none is stored.
func (m *Manager) Load(ctx context.Context, sessionID, name string) (*domain.Journey, error) {
	var journey *domain.Journey
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		token, err := m.store.Load(ctx, sessionID, name)
		if err != nil {
			return err
		}
		journey, err = domain.ParseJourney(token)
		if err != nil {
			return fmt.Errorf("stored journey '%s' is corrupt: %w", name, err)
		}
		return nil
	})
	return journey, err
}

// Exists reports whether the named journey is stored for the session.
func (m *Manager) Exists(ctx context.Context, sessionID, name string) (bool, error) {
	_, err := m.Load(ctx, sessionID, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrJourneyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Save persists the journey under its name.
func (m *Manager) Save(ctx context.Context, sessionID string, journey *domain.Journey) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, journey.Name, journey.String())
	})
}

// Delete removes the named journey of the session.
func (m *Manager) Delete(ctx context.Context, sessionID, name string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID, name)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context, sessionID string) ([]string, error) {
	return m.store.List(ctx, sessionID)
}

// Store returns the underlying journey store.
func (m *Manager) Store() ports.JourneyStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
// Calls nested inside fn with the context it receives do not lock again.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	if held, _ := ctx.Value(heldKey{}).(string); held == sessionID {
		return fn(ctx)
	}

	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			switch err := unlock(ctx); {
			case errors.Is(err, ports.ErrLockLost):
				m.logger.Warn("Session lock expired while held; consider a longer lock TTL",
					"session_id", sessionID,
					"ttl", m.lockTTL,
				)
			case err != nil:
				m.logger.Warn("Failed to release session lock, it will expire via TTL",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(context.WithValue(ctx, heldKey{}, sessionID))
}
