// cmd/backoffice/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fleet-backoffice/internal/ai"
	"fleet-backoffice/internal/common/config"
	"fleet-backoffice/internal/common/database"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/observability"
	"fleet-backoffice/internal/leaderboard"
	"fleet-backoffice/internal/notify"
	"fleet-backoffice/internal/search"
	"fleet-backoffice/internal/server"
	"fleet-backoffice/internal/store"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting back-office service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("backoffice")
	defer obs.Shutdown()

	tracing := observability.NewTracing("backoffice", cfg.Observability.JaegerEndpoint)
	defer tracing.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS clients (only for enabled channels) ---
	var emailClient notify.EmailAPI
	if cfg.Notifications.AWS.SES.Enabled {
		emailClient, err = notify.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
	}
	var smsClient notify.SMSAPI
	if cfg.Notifications.AWS.SNS.Enabled {
		smsClient, err = notify.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
	}

	// --- Wire services ---
	repo := store.NewStore(pg.DB, log)
	cacheTTL := time.Duration(cfg.Leaderboard.CacheTTL) * time.Second
	cache := store.NewCache(redisClient.Client, cacheTTL, log)
	lbService := leaderboard.NewService(repo, cache, log)

	orchestrator := ai.NewOrchestrator(cfg.AI, log, tracing)
	searchService := search.NewService(esClient.Client, cfg.Database.Elasticsearch, log)
	dispatcher := notify.NewDispatcher(emailClient, smsClient, cfg.Notifications, log)

	// --- Change listener + background refresher ---
	listener := store.NewListener(cfg.Database.Postgres.GetDSN(), cfg.Database.Postgres.ChangeChannel, log)
	if err := listener.Start(ctx); err != nil {
		zapLog.Fatal("change listener failed", zap.Error(err))
	}
	defer listener.Close()

	refreshInterval := time.Duration(cfg.Leaderboard.RefreshInterval) * time.Second
	if refreshInterval <= 0 {
		refreshInterval = time.Minute
	}
	go lbService.Run(ctx, refreshInterval, listener.Events())

	// --- HTTP Server ---
	srv := server.New(lbService, repo, orchestrator, searchService, dispatcher, cfg, obs, log)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Back-office service stopped gracefully")
}
