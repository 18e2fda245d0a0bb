package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ops-dashboard/internal/config"
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/middleware"
	"ops-dashboard/internal/observability"
	"ops-dashboard/internal/server"
)

const csvLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("starting application", "version", "1.0.0", "csv", cfg.Data.CSVFile)

	store := dataset.NewStore(logger)

	// Warm the cache. A missing source is not fatal: the store serves an
	// empty schema-complete dataset until the file appears.
	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	ds, err := store.Load(ctx, cfg.Data.CSVFile)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset ready", "rows", len(ds.Rows), "source", ds.Source)

	srv := server.NewServer(store, cfg, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server.ShutdownTimeout)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		store.InvalidateAll()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("application stopped gracefully")
}
