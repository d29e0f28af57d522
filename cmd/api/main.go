// Command api serves the sumo prediction HTTP API.
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

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sumo-yosou/predict-api/internal/cache"
	"github.com/sumo-yosou/predict-api/internal/config"
	"github.com/sumo-yosou/predict-api/internal/handlers"
	"github.com/sumo-yosou/predict-api/internal/logic"
	"github.com/sumo-yosou/predict-api/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer ch.Close()
	if err := ch.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}

	// Redis
	rdb, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sugar.Infow("Connected to datastores")

	// Stores and services
	store := logic.NewPostgresStore(pg)
	history := logic.NewClickHouseHistory(ch)
	records := cache.NewRecordCounter(rdb)

	engine := logic.NewEngine(logic.EngineConfig{
		Wrestlers:  store,
		History:    history,
		Logger:     sugar.Named("engine"),
		FormWindow: cfg.RecentFormWindow,
		Timeout:    cfg.PredictionTimeout,
	})

	predictions := logic.NewPredictionService(logic.PredictionServiceConfig{
		Store:     store,
		Wrestlers: store,
		Engine:    engine,
		Quota:     logic.NewQuotaGuard(store, cfg.FreeMonthlyLimit),
		Locker:    cache.NewLockManager(rdb),
		Logger:    sugar.Named("predictions"),
		LockTTL:   cfg.LockTTL,
		LockWait:  cfg.LockWait,
	})
	wrestlers := logic.NewWrestlerService(store, history, records, sugar.Named("rikishi"))

	// Match ingestion
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Records:       records,
		Logger:        logger.Named("worker"),
	})
	pool.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Postgres:   pg,
		ClickHouse: ch,
		Checks: map[string]handlers.Pinger{
			"postgres":   pg,
			"clickhouse": ch,
			"redis":      rdb,
		},
		Logger:      logger.Named("http"),
		JWTSecret:   []byte(cfg.JWTSecret),
		IngestToken: cfg.IngestToken,
		Predictions: predictions,
		Wrestlers:   wrestlers,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: h.Routes(handlers.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			Limiter:        cache.NewRateLimiter(rdb),
			RateLimit:      cfg.RateLimitMaxRequests,
			RateWindow:     cfg.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("HTTP server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			sugar.Errorw("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown error", "error", err)
	}

	// Flush queued matches before the datastores close
	pool.Stop()

	sugar.Info("Shutdown complete")
	return nil
}
