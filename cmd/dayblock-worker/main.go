package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/app"
	"github.com/felixgeelhaar/dayblock/internal/notifications"
	progressSubscribers "github.com/felixgeelhaar/dayblock/internal/progress/application/subscribers"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/dayblock/pkg/config"
	"github.com/felixgeelhaar/dayblock/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting dayblock worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize worker", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	processor := container.OutboxProcessor
	if err := processor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}

	// Periodic cleanup of published outbox rows.
	cleanupTicker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer cleanupTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				deleted, err := container.OutboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
				if err != nil {
					logger.Error("outbox cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					logger.Info("outbox cleanup completed",
						"deleted", deleted,
						"retention_days", cfg.OutboxRetentionDays,
					)
				}
			}
		}
	}()

	// Periodic calendar drift sweep.
	if container.Coordinator.Enabled() {
		reconcileTicker := time.NewTicker(cfg.ReconcileInterval)
		defer reconcileTicker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-reconcileTicker.C:
					report, err := container.ScheduleService.Reconcile(ctx)
					if err != nil {
						logger.Error("reconcile sweep failed", "error", err)
						continue
					}
					logger.Info("reconcile sweep completed",
						"checked", report.Checked,
						"unlinked", report.Unlinked,
						"failed", report.Failed,
					)
				}
			}
		}()
	}

	// Consume domain events from the broker. With the in-process bus the
	// subscribers are already registered in the container.
	if cfg.RabbitMQURL != "" && container.InProcessBus == nil {
		consumer, err := startConsumer(ctx, cfg, container, logger)
		if err != nil {
			logger.Error("failed to start event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
	}

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg, container, logger)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	processor.Stop()
	logger.Info("worker stopped")
}

func startConsumer(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) (*eventbus.RabbitMQConsumer, error) {
	registry := eventbus.NewConsumerRegistry(logger)
	registry.Register(progressSubscribers.NewProgressSubscriber(container.BlockRepo, container.Aggregator, logger))
	registry.Register(notifications.NewReminderSubscriber(logger))

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    cfg.RabbitMQURL,
		Logger: logger,
	}, registry)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("event consumer stopped", "error", err)
		}
	}()
	return consumer, nil
}

func startHealthServer(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) {
	registry := observability.NewHealthRegistry()
	registry.Register("database", observability.DatabaseHealthChecker(databasePing(container)))
	if container.RedisClient != nil {
		registry.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return container.RedisClient.Ping(ctx).Err()
		}))
	}

	processor := container.OutboxProcessor
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := processor.GetStats()
		health := registry.GetOverallHealth(r.Context())
		response := map[string]any{
			"status":            health.Status,
			"checks":            health.Checks,
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"lag_seconds":       stats.LagSeconds,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		}
		if health.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := databasePing(container)(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	healthSrv := &http.Server{
		Addr:              cfg.WorkerHealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}

func databasePing(container *app.Container) func(ctx context.Context) error {
	if container.DBDriver == database.DriverPostgres {
		return container.PostgresPool.Ping
	}
	return container.SQLiteDB.PingContext
}
