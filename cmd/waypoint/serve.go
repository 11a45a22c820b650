package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the demo journeys as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := newLogger(cmd, cfg); err != nil {
			return err
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), waypoint.Version)
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

// newServer wires the engine and HTTP handler described by cfg.
func newServer(ctx context.Context, cfg config.Config) (*http.Server, *backend, error) {
	logger := loggerFrom(ctx)

	b, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	opts := []waypoint.Option{
		waypoint.WithBuilders(demo.Builder()),
		waypoint.WithEvents(demo.Events()...),
		waypoint.WithLogger(logger),
	}
	if store := b.store; store != nil {
		opts = append(opts, waypoint.WithStore(store, b.mws...))
		if b.locker != nil {
			opts = append(opts, waypoint.WithLocker(b.locker, cfg.Store.LockTTL))
		}
	}

	var handlerOpts []httpAdapter.Option
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, waypoint.WithMetrics(reg))
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	handlerOpts = append(handlerOpts, httpAdapter.WithSecureCookies(cfg.Server.SecureCookies))

	eng, err := waypoint.New(opts...)
	if err != nil {
		_ = b.close()
		return nil, nil, err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           eng.Handler(handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, b, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFrom(ctx)

	srv, b, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Error("Failed to close store", "err", err)
		}
	}()

	if b.prune != nil {
		if err := pruneOnce(ctx, b, logger); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting waypoint server", "addr", srv.Addr, "store", cfg.Store.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if b.prune != nil && b.pruneEvery > 0 {
		g.Go(func() error {
			return pruneLoop(gctx, b, logger)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("Waypoint server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func pruneOnce(ctx context.Context, b *backend, logger *slog.Logger) error {
	n, err := b.prune(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune stored journeys: %w", err)
	}
	logger.Info("Pruned stored journeys", "count", n)
	return nil
}

// pruneLoop prunes on every tick until ctx is done. Failures are logged and
// retried on the next tick.
func pruneLoop(ctx context.Context, b *backend, logger *slog.Logger) error {
	ticker := time.NewTicker(b.pruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := pruneOnce(ctx, b, logger); err != nil && ctx.Err() == nil {
				logger.Warn("Periodic prune failed", "err", err)
			}
		}
	}
}
