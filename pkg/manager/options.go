package manager

import (
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Transitions are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
// Repeated calls accumulate.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithSessions enables server-side persistence through an existing session manager.
func WithSessions(sessions *session.Manager) Option {
	return func(m *Manager) {
		m.sessions = sessions
	}
}

// WithStore enables server-side persistence in store, with local session locking.
func WithStore(store ports.JourneyStore, opts ...session.Option) Option {
	return func(m *Manager) {
		m.sessions = session.NewManager(store, opts...)
	}
}
