package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/models"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/registry"
	"mergington-activities/internal/server"
	"mergington-activities/pkg/seed"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: configs/config.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("backend", cfg.Registry.Backend),
	)

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()
	if cfg.Observability.Tracing.Enabled {
		tracing := cfg.Observability.Tracing
		if err := obs.EnableTracing(cfg.App.Name, tracing.JaegerEndpoint, tracing.SampleRatio); err != nil {
			zapLog.Fatal("tracing setup failed", zap.Error(err))
		}
		zapLog.Info("Tracing enabled", zap.String("endpoint", tracing.JaegerEndpoint))
	}

	ctx := context.Background()

	activities, err := loadActivities(cfg.Registry.SeedPath)
	if err != nil {
		zapLog.Fatal("seed load failed", zap.Error(err))
	}

	// --- Roster store ---
	store, readiness, closeStore, err := openStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("registry store unavailable", zap.Error(err))
	}
	defer closeStore()

	reg := registry.New(activities, registry.Dependencies{
		Store:         store,
		Logger:        log.WithFields(map[string]interface{}{"component": "registry"}),
		Observability: obs,
		StoreTimeout:  config.GetDuration(cfg.Registry.Timeout),
	})

	restoreCtx, cancelRestore := context.WithTimeout(ctx, 30*time.Second)
	err = reg.Restore(restoreCtx)
	cancelRestore()
	if err != nil {
		zapLog.Fatal("roster restore failed", zap.Error(err))
	}

	notifier, err := notify.FromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier setup failed", zap.Error(err))
	}

	srv := server.New(cfg, server.Dependencies{
		Registry:      reg,
		Notifier:      notifier,
		Logger:        log.WithFields(map[string]interface{}{"component": "http"}),
		Observability: obs,
		Readiness:     readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()
	zapLog.Info("Activities API ready",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("activities", len(activities)),
	)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...")
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Activities API stopped gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func loadActivities(path string) (models.ActivityMap, error) {
	if path == "" {
		return seed.Default().ToActivities(), nil
	}
	file, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	return file.ToActivities(), nil
}

// openStore connects the configured roster backend. The memory backend has
// no store and nothing to check for readiness.
func openStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (registry.Store, map[string]server.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Registry.Backend {
	case config.BackendRedis:
		var rdb *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, nil, noop, err
		}
		zapLog.Info("Redis connected successfully")

		closeFn := func() {
			if err := rdb.Close(); err != nil {
				zapLog.Error("Error closing Redis client", zap.Error(err))
			}
		}
		store := registry.NewRedisStore(rdb.Client, cfg.Database.Redis.KeyPrefix)
		return store, map[string]server.Pinger{"redis": rdb}, closeFn, nil

	case config.BackendPostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, nil, noop, err
		}
		zapLog.Info("PostgreSQL connected successfully")

		closeFn := func() {
			if err := pg.Close(); err != nil {
				zapLog.Error("Error closing PostgreSQL connection", zap.Error(err))
			}
		}
		store := registry.NewPostgresStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			closeFn()
			return nil, nil, noop, err
		}
		return store, map[string]server.Pinger{"postgres": pg}, closeFn, nil

	default:
		return nil, nil, noop, nil
	}
}
