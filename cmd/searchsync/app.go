package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	"github.com/kailas-cloud/searchsync/internal/db"
	dbBleve "github.com/kailas-cloud/searchsync/internal/db/bleve"
	dbElastic "github.com/kailas-cloud/searchsync/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/searchsync/internal/db/redis"
	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/store/sqlite"
	"github.com/kailas-cloud/searchsync/internal/usecase/hook"
	"github.com/kailas-cloud/searchsync/internal/usecase/projection"
	syncuc "github.com/kailas-cloud/searchsync/internal/usecase/sync"
	"github.com/kailas-cloud/searchsync/internal/version"
)

// app is the composition root shared by every command.
type app struct {
	cfg      config.Config
	env      string
	logger   *zap.Logger
	engine   db.Engine
	store    *sqlite.Store
	registry *descriptor.Registry
	project  *projection.Projector
	hooks    *hook.Dispatcher
	sync     *syncuc.Service
}

func newApp(ctx context.Context, component string) (*app, error) {
	cfg, env, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("component", component))

	logger.Info("Starting searchsync",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("engine_driver", cfg.Engine.Driver),
		zap.Strings("engine_addrs", cfg.Engine.Addrs),
		zap.String("store_path", cfg.Store.Path),
	)

	registry, err := cfg.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build type registry: %w", err)
	}

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := engine.WaitForReady(ctx, time.Duration(cfg.Engine.ReadinessTimeout)*time.Second); err != nil {
		engine.Close()
		return nil, fmt.Errorf("engine not ready: %w", err)
	}
	logger.Info("Connected to engine")

	store, err := sqlite.Open(cfg.Store.Path, logger)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	metrics.RegisterSyncMetrics()

	project := projection.New(logger)
	hooks := hook.New(engine, project, registry, logger)
	for _, desc := range registry.All() {
		store.Subscribe(desc.Name(), hooks.Bind(desc))
	}

	syncSvc := syncuc.New(store, engine, project, registry, logger).
		WithBatchSize(cfg.Index.BatchSize)

	logger.Info("Types registered",
		zap.Strings("types", registry.Names()),
		zap.Strings("indexes", registry.Indexes()),
	)

	return &app{
		cfg:      cfg,
		env:      env,
		logger:   logger,
		engine:   engine,
		store:    store,
		registry: registry,
		project:  project,
		hooks:    hooks,
		sync:     syncSvc,
	}, nil
}

// Close waits for in-flight hook tasks, then releases the store and the engine.
func (a *app) Close() {
	a.hooks.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("record store close", zap.Error(err))
	}
	a.engine.Close()
	_ = a.logger.Sync()
}

func newEngine(cfg config.EngineConfig) (db.Engine, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverElastic:
		return dbElastic.NewStore(dbElastic.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case config.DriverBleve:
		return dbBleve.NewEngine(dbBleve.Config{Path: cfg.Path}), nil
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Driver)
	}
}
