package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rentura/internal/adapters/http/api"
	"github.com/okian/rentura/internal/adapters/http/site"
	"github.com/okian/rentura/internal/adapters/http/swagger"
	"github.com/okian/rentura/internal/adapters/upstream"
	service "github.com/okian/rentura/internal/app"
	"github.com/okian/rentura/internal/config"
	"github.com/okian/rentura/internal/domain/presenter"
	"github.com/okian/rentura/pkg/logger"
	"github.com/okian/rentura/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	writeTimeoutSlack         = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	mm := newMetrics(cfg)

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("upstream", cfg.UpstreamURL),
			logger.Duration("upstream_timeout", cfg.UpstreamTimeout))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx, mm.RefreshInterval())
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
			return err
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	return g.Wait()
}

// newMetrics rebuilds the metrics registry from configuration. It must run
// before newMux so /healthz serves the rebuilt registry.
func newMetrics(cfg *config.Config) *metrics.Manager {
	return metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithCustomLabels(cfg.MetricsLabelMap()),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
	)
}

// newService wires the upstream client into a started service.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	client := upstream.NewClient(cfg.UpstreamURL,
		upstream.WithTimeout(cfg.UpstreamTimeout),
		upstream.WithLogger(log.Named("upstream")),
	)
	svc := service.New(client,
		service.WithLogger(log.Named("service")),
		service.WithMarkerPhrases(cfg.MarkerPhrases...),
		service.WithPresenter(presenter.New(presenter.WithEmptyMessage(cfg.EmptyMessage))),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// newMux registers the JSON API, API docs and the upload page.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	api.NewServer(svc, svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
	).Register(ctx, mux)

	site.Register(ctx, mux, site.NewRootHandler(svc,
		site.WithMaxUploadBytes(cfg.MaxUploadBytes),
		site.WithLogger(log.Named("site")),
	))

	return mux
}

// writeTimeout leaves room for a full upstream round trip.
func writeTimeout(cfg *config.Config) time.Duration {
	return cfg.UpstreamTimeout + writeTimeoutSlack
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
