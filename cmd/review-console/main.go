// cmd/review-console/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loan-review-console/internal/audit"
	"loan-review-console/internal/backend"
	"loan-review-console/internal/cache"
	"loan-review-console/internal/common/aws"
	"loan-review-console/internal/common/config"
	"loan-review-console/internal/common/database"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/common/observability"
	"loan-review-console/internal/listing"
	"loan-review-console/internal/normalize"
	"loan-review-console/internal/notify"
	"loan-review-console/internal/review"
	"loan-review-console/internal/server"
	"loan-review-console/internal/video"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting review console...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rds *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rds, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rds.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rds.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS clients ---
	snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client init failed", zap.Error(err))
	}
	sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client init failed", zap.Error(err))
	}

	// --- Wire collaborators ---
	backendClient := backend.NewClient(cfg.Backend, log)
	rooms := video.NewRooms(cfg.Video)
	notifier := notify.NewService(snsClient, sesClient, cfg.Notifications, log)

	auditStore := audit.NewStore(pg.GetDB(), log)
	if err := auditStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("audit schema init failed", zap.Error(err))
	}

	normalizer := normalize.New(log)

	manager := review.NewManager(review.Dependencies{
		Reader:      backendClient,
		Transitions: backendClient,
		Notifier:    notifier,
		Rooms:       rooms,
		Recorder:    auditStore,
		Normalizer:  normalizer,
		Logger:      log,
	})

	listCache := cache.NewListCache(rds.GetClient(), cfg.Cache, log)
	listings := listing.NewService(backendClient, normalizer, listCache, log)

	handlers := server.NewHandlers(manager, listings, auditStore, obs, log)
	srv := server.New(cfg.Server.Port, handlers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Review console stopped")
}
