package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/sqlite"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
)

type loggerKey struct{}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return logging.NewNop()
}

// backend is an opened journey store with its optional distributed lock.
type backend struct {
	store  ports.JourneyStore
	locker ports.DistributedLocker
	mws    []middleware.Middleware
	// prune removes journeys older than the configured age, when supported.
	prune      func(ctx context.Context) (int64, error)
	pruneEvery time.Duration
	close      func() error
}

// openBackend opens the store selected by cfg. A nil store means
// persistence is disabled.
func openBackend(ctx context.Context, cfg config.StoreConfig) (*backend, error) {
	b := &backend{close: func() error { return nil }}

	switch cfg.Kind {
	case config.StoreNone:
		return b, nil

	case config.StoreMemory:
		b.store = memory.NewStore()

	case config.StoreRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		b.store = store
		b.locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		b.close = store.Close

	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		b.store = store
		b.close = store.Close
		if cfg.SQLite.MaxAge > 0 {
			b.prune = func(ctx context.Context) (int64, error) {
				return store.Prune(ctx, cfg.SQLite.MaxAge)
			}
			b.pruneEvery = cfg.SQLite.PruneInterval
		}

	default:
		return nil, fmt.Errorf("unknown store kind '%s'", cfg.Kind)
	}

	if cfg.EncryptionKey != "" {
		key, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			_ = b.close()
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.mws = append(b.mws, mw)
	}
	return b, nil
}

// journeyStore returns the store with its middlewares applied.
func (b *backend) journeyStore() ports.JourneyStore {
	if b.store == nil {
		return nil
	}
	return middleware.Chain(b.store, b.mws...)
}
