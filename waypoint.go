package waypoint

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/manager"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Engine is the high-level entry point for the waypoint library.
// It wires journey definitions, persistence, logging and metrics into a
// manager and provides a simplified API for consumers.
type Engine struct {
	*manager.Manager

	metrics *observability.Metrics
	events  []domain.EventKey
	logger  *slog.Logger
}

type options struct {
	builders    []*dsl.Builder
	defs        []*definition.Definition
	store       ports.JourneyStore
	middlewares []middleware.Middleware
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	hooks       domain.LifecycleHooks
	registerer  prometheus.Registerer
	events      []domain.EventKey
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

// WithBuilders adds the journeys declared in builders. Each builder is
// built on New and its errors are reported together.
func WithBuilders(builders ...*dsl.Builder) Option {
	return func(o *options) {
		o.builders = append(o.builders, builders...)
	}
}

// WithDefinitions adds already built journey definitions.
func WithDefinitions(defs ...*definition.Definition) Option {
	return func(o *options) {
		o.defs = append(o.defs, defs...)
	}
}

// WithStore enables server-side persistence of journeys.
func WithStore(store ports.JourneyStore, mws ...middleware.Middleware) Option {
	return func(o *options) {
		o.store = store
		o.middlewares = append(o.middlewares, mws...)
	}
}

// WithLocker serializes requests of one session across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithMetrics registers the Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEvents registers the events the HTTP handler may fire.
func WithEvents(events ...domain.EventKey) Option {
	return func(o *options) {
		o.events = append(o.events, events...)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds every journey and wires the manager.
func New(opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	defs := append([]*definition.Definition(nil), o.defs...)
	var errs error
	for _, b := range o.builders {
		built, err := b.BuildAll()
		errs = multierr.Append(errs, err)
		defs = append(defs, built...)
	}
	if errs != nil {
		return nil, fmt.Errorf("failed to build journeys: %w", errs)
	}

	eng := &Engine{events: o.events, logger: o.logger}

	hooks := o.hooks
	if o.registerer != nil {
		eng.metrics = observability.NewMetrics(o.registerer)
		hooks = hooks.Merge(eng.metrics.Hooks())
	}

	mgrOpts := []manager.Option{
		manager.WithLogger(o.logger),
		manager.WithLifecycleHooks(hooks),
	}
	if o.store != nil {
		sessOpts := []session.Option{session.WithLogger(o.logger)}
		if o.locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(o.locker), session.WithLockTTL(o.lockTTL))
		}
		store := middleware.Chain(o.store, o.middlewares...)
		mgrOpts = append(mgrOpts, manager.WithStore(store, sessOpts...))
	}

	mgr, err := manager.New(defs, mgrOpts...)
	if err != nil {
		return nil, err
	}
	eng.Manager = mgr
	return eng, nil
}

// Metrics returns the registered collectors, nil unless WithMetrics was given.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Handler returns the HTTP API of the engine.
func (e *Engine) Handler(opts ...httpAdapter.Option) http.Handler {
	base := []httpAdapter.Option{
		httpAdapter.WithEvents(e.events...),
		httpAdapter.WithLogger(e.logger),
	}
	return httpAdapter.NewHandler(e.Manager, append(base, opts...)...)
}
