// Package main runs the postage HTTP service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/postage-service/internal/adapters/cache"
	"github.com/jsamuelsen/postage-service/internal/adapters/delivery"
	"github.com/jsamuelsen/postage-service/internal/adapters/events"
	"github.com/jsamuelsen/postage-service/internal/adapters/http"
	"github.com/jsamuelsen/postage-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/postage-service/internal/adapters/repository"
	"github.com/jsamuelsen/postage-service/internal/app"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
	"github.com/jsamuelsen/postage-service/internal/platform/logging"
	"github.com/jsamuelsen/postage-service/internal/platform/telemetry"
	"github.com/jsamuelsen/postage-service/internal/ports"
)

// Build-time variables, injected via ldflags:
// go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting postage service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		Insecure:     cfg.Telemetry.Insecure,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	translator := i18n.New(cfg.App.Locale)
	i18n.SetDefault(translator)

	healthRegistry := ports.NewHealthRegistry()

	modules, err := delivery.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("building delivery modules: %w", err)
	}

	moduleRegistry := ports.NewModuleRegistry()
	if err := modules.Register(moduleRegistry); err != nil {
		return fmt.Errorf("registering delivery modules: %w", err)
	}

	for _, checker := range modules.Checkers {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	adapters, err := openAdapters(ctx, cfg, logger, healthRegistry)
	if err != nil {
		return err
	}
	defer adapters.close(logger)

	metrics, err := telemetry.NewPostageMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering postage metrics: %w", err)
	}

	postageService := app.NewPostageService(app.PostageServiceConfig{
		Registry:      moduleRegistry,
		Cache:         adapters.cache,
		Publisher:     adapters.publisher,
		Repository:    adapters.repository,
		Recorder:      metrics,
		Translator:    translator,
		Logger:        logger,
		CacheTTL:      cfg.Postage.CacheTTL,
		ModuleTimeout: cfg.Postage.ModuleTimeout,
		Concurrency:   cfg.Postage.Concurrency,
	})

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		AppConfig:      &cfg.App,
		ServerConfig:   &cfg.Server,
		HealthHandler:  handlers.NewHealthHandler(healthRegistry, postageService, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		PostageHandler: handlers.NewPostageHandler(postageService),
	})

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// optionalAdapters holds the adapters that are only wired when enabled.
// Interface fields stay nil when disabled so the service skips them.
type optionalAdapters struct {
	cache      ports.QuoteCache
	publisher  ports.QuotePublisher
	repository ports.QuoteRepository
	closers    []io.Closer
}

func openAdapters(ctx context.Context, cfg *config.Config, logger *slog.Logger, health ports.HealthRegistry) (*optionalAdapters, error) {
	out := &optionalAdapters{}

	if cfg.Cache.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Cache.Redis, logger)
		out.cache = redisCache
		out.closers = append(out.closers, redisCache)

		if err := health.Register(redisCache); err != nil {
			return nil, fmt.Errorf("registering redis health check: %w", err)
		}
	}

	if cfg.Events.Kafka.Enabled {
		publisher := events.NewKafkaPublisher(cfg.Events.Kafka, logger)
		out.publisher = publisher
		out.closers = append(out.closers, publisher)
	}

	if cfg.Database.Enabled {
		db, err := repository.Open(cfg.Database, logger)
		if err != nil {
			out.close(logger)
			return nil, fmt.Errorf("opening quote archive: %w", err)
		}

		repo := repository.NewGormRepository(db)
		out.repository = repo
		out.closers = append(out.closers, repo)

		if cfg.Database.AutoMigrate {
			migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := repo.Migrate(migrateCtx)

			cancel()

			if err != nil {
				out.close(logger)
				return nil, fmt.Errorf("migrating quote archive: %w", err)
			}
		}

		if err := health.Register(repo); err != nil {
			out.close(logger)
			return nil, fmt.Errorf("registering database health check: %w", err)
		}
	}

	return out, nil
}

// close releases adapters in reverse opening order.
func (a *optionalAdapters) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Error("closing adapter", slog.Any("error", err))
		}
	}
}

// waitForShutdown blocks until a signal or a server error, then drains
// in-flight requests within shutdownTimeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
