package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/internal/document/crossval"
	"docverify/internal/document/handler"
	"docverify/internal/document/metrics"
	"docverify/internal/document/service"
	"docverify/internal/document/store"
	"docverify/internal/platform/config"
	"docverify/internal/platform/httpserver"
	"docverify/internal/platform/logger"
	platformmetrics "docverify/internal/platform/metrics"
	platformredis "docverify/internal/platform/redis"
	"docverify/pkg/platform/audit/publisher"
	auditmemory "docverify/pkg/platform/audit/store/memory"
	"docverify/pkg/platform/middleware/requestid"
	"docverify/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/document.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validationCfg, err := config.LoadValidation(cfg.ValidationConfigPath)
	if err != nil {
		return err
	}
	validator, err := crossval.New(validationCfg)
	if err != nil {
		return err
	}

	verifications, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	auditPublisher := publisher.NewPublisher(auditmemory.NewInMemoryStore(),
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	svc, err := service.New(verifications, cfg.HashSalt,
		service.WithValidator(validator),
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(auditPublisher),
		service.WithBatchLimits(cfg.BatchConcurrency, cfg.MaxBatchSize),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(platformmetrics.NewHTTP().Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(r)

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting docverify", "addr", cfg.Addr, "storage", cfg.Storage)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore selects the verification store backend from cfg.
func openStore(ctx context.Context, cfg config.Server) (service.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return store.NewInMemoryStore(), func() {}, nil
	case config.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("DATABASE_URL is required for postgres storage")
		}
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		pg := store.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil
	case config.StorageRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("REDIS_URL is required for redis storage")
		}
		return store.NewRedisStore(client.Client, cfg.VerificationTTL), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
