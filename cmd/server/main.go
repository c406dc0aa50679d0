package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appservice "github.com/turtacn/crp/internal/application/service"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/repository"
	domainservice "github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/internal/infrastructure/events"
	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/internal/infrastructure/persistence/memory"
	redisstore "github.com/turtacn/crp/internal/infrastructure/persistence/redis"
	"github.com/turtacn/crp/internal/infrastructure/predictor"
	"github.com/turtacn/crp/internal/interfaces/http"
	"github.com/turtacn/crp/internal/interfaces/http/handlers"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/logger"
)

// configPathEnv points at an explicit config file; empty searches the default locations.
const configPathEnv = "CRP_CONFIG"

const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	// Load config
	loader := config.NewLoader(os.Getenv(configPathEnv))
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	// 日志级别支持热更新
	loader.Watch(appLogger, func(next *config.Config) {
		if err := appLogger.SetLevel(next.Log.Level); err != nil {
			appLogger.Warn(ctx, "Ignoring invalid log level", logger.Fields{"level": next.Log.Level})
			return
		}
		appLogger.Info(ctx, "Log level applied", logger.Fields{"level": next.Log.Level})
	})

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	// Initialize session storage
	sessions, sessionHealth, closeSessions, err := newSessionStore(ctx, cfg, metrics, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize session store", err, logger.Fields{"backend": string(cfg.Session.Backend)})
	}
	defer closeSessions()

	// Initialize infrastructure
	predictorClient := predictor.NewClient(&cfg.Predictor, appLogger)
	publisher := events.New(&cfg.Events, appLogger)
	defer publisher.Close()

	// Initialize application services
	predictionSvc := appservice.NewPredictionAppService(sessions, predictorClient, appLogger,
		appservice.WithPublisher(publisher),
		appservice.WithMetrics(metrics),
		appservice.WithTracer(tracing.Tracer()),
	)

	// Initialize HTTP handlers and router
	healthHandler := handlers.NewHealthHandler(map[string]domainservice.HealthChecker{
		"session_store": sessionHealth,
		"predictor":     predictorClient,
	}, appLogger)

	router, err := http.NewRouter(http.RouterDependencies{
		Config:           cfg,
		Logger:           appLogger,
		HealthHandler:    healthHandler,
		PredictorHandler: handlers.NewPredictorHandler(predictionSvc, appLogger),
		Metrics:          metrics,
		Gatherer:         registry,
		Tracing:          tracing,
	})
	if err != nil {
		appLogger.Fatal(ctx, "Failed to build router", err)
	}

	appLogger.Info(ctx, "Credit risk predictor starting", logger.Fields{
		"address":         cfg.Server.Address(),
		"predictor":       predictorClient.Endpoint(),
		"session_backend": string(cfg.Session.Backend),
		"events_enabled":  cfg.Events.Enabled,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Start()
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info(ctx, "Shutting down", logger.Fields{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(ctx, "HTTP server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(ctx, "Server forced to shutdown", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(ctx, "Failed to flush traces", err)
	}
	appLogger.Info(ctx, "HTTP server stopped")
}

// newSessionStore builds the configured session backend together with the
// health check /ready uses for it. The Redis connection reports pool statistics.
func newSessionStore(ctx context.Context, cfg *config.Config, metrics domainservice.Metrics, log logger.Logger) (repository.SessionRepository, domainservice.HealthChecker, func(), error) {
	if cfg.Session.Backend != constants.SessionBackendRedis {
		store := memory.NewSessionStore(cfg.Session.TTL, log)
		return store, store, func() {}, nil
	}

	conn := redisstore.NewRedisConnection(&cfg.Redis, log)
	if err := conn.Connect(ctx); err != nil {
		return nil, nil, nil, err
	}
	store := redisstore.NewSessionStore(conn.GetClient(), cfg.Session.TTL, metrics, log)
	return store, conn, func() { _ = conn.Close() }, nil
}

//Personal.AI order the ending
