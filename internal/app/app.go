package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/trackreconcile/internal/controllers/restserver"
	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         log.OrDefault(logger),
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	sampleStore, err := OpenStore(cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	if sampleStore != nil {
		defer sampleStore.Close()
	} else {
		log.Warn("no storage configured; only the inline /reconcile and /route endpoints will work")
	}

	deps := restserver.Dependencies{
		Store:      sampleStore,
		Reconciler: metrics.NewReconciler(MetricsParams(cfg.Pipeline), a.logger),
		Builder:    route.NewBuilder(RouteParams(cfg.Pipeline), a.logger),
		Audit:      cfg.Storage.Audit,
	}

	ctrl, err := restserver.NewController(ctx, &wg, cfg.Server, deps, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// OpenStore connects the configured sample store. It returns nil when no
// backend is configured.
func OpenStore(sc config.StorageData, logger *zap.SugaredLogger) (store.SampleStore, error) {
	switch {
	case sc.Postgres != nil:
		s, err := store.NewPostgresStore(sc.Postgres.ConnectionString, logger)
		if err != nil {
			return nil, fmt.Errorf("could not open Postgres sample store: %w", err)
		}
		return s, nil
	case sc.SQLite != nil:
		s, err := store.NewSQLiteStore(sc.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("could not open SQLite sample store: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}

// MetricsParams maps the pipeline configuration onto reconciler parameters
func MetricsParams(p config.PipelineData) metrics.Params {
	params := metrics.DefaultParams()
	params.ElevationThresholdM = p.ElevationThresholdM
	params.Segment = metrics.SegmentParams{
		MinElapsedS:          p.MinElapsedS,
		MaxWalkingDistanceM:  p.MaxWalkingDistanceM,
		MaxSpeedMps:          p.MaxSpeedMps,
		FallbackMaxDistanceM: p.FallbackMaxDistanceM,
	}
	return params
}

// RouteParams maps the pipeline configuration onto render route parameters
func RouteParams(p config.PipelineData) route.Params {
	return route.Params{
		PrivacyDistanceM: p.PrivacyDistanceM,
		Sampler: route.SamplerParams{
			TargetSpacingM: p.TargetSpacingM,
			MaxPoints:      p.MaxPoints,
			MaxSegmentM:    p.MaxSegmentM,
		},
	}
}
