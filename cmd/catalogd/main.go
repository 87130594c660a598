package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/config"
	"github.com/kailas-cloud/catalogd/internal/db"
	dbBadger "github.com/kailas-cloud/catalogd/internal/db/badger"
	dbRedis "github.com/kailas-cloud/catalogd/internal/db/redis"
	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	"github.com/kailas-cloud/catalogd/internal/metrics"
	budgetrepo "github.com/kailas-cloud/catalogd/internal/repository/budget"
	catalogrepo "github.com/kailas-cloud/catalogd/internal/repository/catalog"
	"github.com/kailas-cloud/catalogd/internal/repository/expcache"
	"github.com/kailas-cloud/catalogd/internal/repository/snapshot"
	chiTransport "github.com/kailas-cloud/catalogd/internal/transport/chi"
	openaiExp "github.com/kailas-cloud/catalogd/internal/transport/openai"
	"github.com/kailas-cloud/catalogd/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogd/internal/usecase/search"
	usageuc "github.com/kailas-cloud/catalogd/internal/usecase/usage"
	validationuc "github.com/kailas-cloud/catalogd/internal/usecase/validation"
	"github.com/kailas-cloud/catalogd/internal/version"
)

// catalogSource is what the services need from a data source.
type catalogSource interface {
	searchuc.DataSource
	validationuc.Source
	healthuc.SourcePinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("data_source", cfg.DataSource.Kind),
	)

	metrics.RegisterCatalogMetrics()

	source, err := buildSource(cfg.DataSource)
	if err != nil {
		logger.Fatal("Failed to create data source", zap.Error(err))
	}

	ctx := context.Background()
	store, err := buildStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		logger.Info("Connected to database")
	}

	searchSvc := searchuc.New(source, logger).WithTTL(cfg.Search.IndexTTL())
	if store != nil {
		searchSvc = searchSvc.WithSnapshots(snapshot.New(store, cfg.Search.IndexTTL()))
	}

	// Pass nil interfaces (not typed nil pointers) for components that are not configured.
	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	var (
		expChecker  healthuc.ExpanderChecker
		budgetUsage usageuc.BudgetReader
	)
	if cfg.Expander.Enabled {
		provider := buildExpander(cfg.Expander, logger)
		expChecker = provider

		budget := expansion.NewBudget(cfg.Expander.Provider, expansion.Limits{
			Daily:   cfg.Expander.Budget.DailyTokens,
			Monthly: cfg.Expander.Budget.MonthlyTokens,
			Action:  expansion.Action(cfg.Expander.Budget.Action),
		}, logger)
		if store != nil {
			budget = budget.WithStore(ctx, budgetrepo.New(store))
		}
		budgetUsage = budget

		// Cache outside the budget: hits cost no tokens.
		var expander searchuc.Expander = expansion.NewBudgetedExpander(
			provider, cfg.Expander.Provider, cfg.Expander.Model, budget, logger)
		if store != nil {
			expander = expcache.New(expander, store, cfg.Expander.CacheTTL(), metrics.ExpanderCacheTotal, logger)
		}
		searchSvc = searchSvc.WithExpander(expander)
		logger.Info("Semantic expander enabled",
			zap.String("provider", cfg.Expander.Provider),
			zap.String("model", cfg.Expander.Model),
			zap.Int64("daily_tokens", cfg.Expander.Budget.DailyTokens),
			zap.Int64("monthly_tokens", cfg.Expander.Budget.MonthlyTokens),
		)
	}

	validationSvc := validationuc.New(source)
	healthSvc := healthuc.New(source, dbPinger, expChecker)

	// Warm the index so the first search does not pay for the build.
	go func() {
		if _, err := searchSvc.BuildIndex(ctx); err != nil {
			logger.Warn("Initial index build failed", zap.Error(err))
		}
	}()

	server := chiTransport.NewServer(searchSvc, validationSvc, healthSvc, logger).
		WithDefaultLimit(cfg.Search.DefaultLimit).
		WithUsage(usageuc.New(budgetUsage))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func buildSource(cfg config.DataSourceConfig) (catalogSource, error) {
	switch cfg.Kind {
	case config.SourceFile:
		src, err := catalogrepo.NewFileSource(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog fixture: %w", err)
		}
		return src, nil
	default:
		return catalogrepo.NewMockSource(catalogrepo.MockConfig{
			Seed:        cfg.Seed,
			Latency:     cfg.Latency(),
			FailureRate: cfg.FailureRate,
		}), nil
	}
}

// buildStore opens the configured key-value store and waits for it.
// Returns a nil store when the driver is "none".
func buildStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		store, err = dbBadger.NewStore(dbBadger.Config{}, logger)
	case config.DriverBadger:
		store, err = dbBadger.NewStore(dbBadger.Config{Path: cfg.Path}, logger)
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

func buildExpander(cfg config.ExpanderConfig, logger *zap.Logger) *openaiExp.Expander {
	logger.Debug("Building semantic expander", zap.String("base_url", cfg.BaseURL))
	return openaiExp.NewExpander(&openaiExp.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		User:     "catalogd/" + version.Version,
		Provider: cfg.Provider,
	})
}
