package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// GracefulServer wraps an http.Server with signal handling and shutdown
// hooks executed within the configured timeout.
type GracefulServer struct {
	server  *http.Server
	logger  *slog.Logger
	timeout time.Duration

	mu    sync.Mutex
	hooks []func(ctx context.Context) error
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, shutdownTimeout time.Duration) *GracefulServer {
	return &GracefulServer{
		server:  server,
		logger:  logger,
		timeout: shutdownTimeout,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, fn)
}

// ListenAndServe runs the server until it fails or a SIGINT/SIGTERM arrives,
// then drains connections and runs the hooks.
func (gs *GracefulServer) ListenAndServe() error {
	serverErrors := make(chan error, 1)
	go func() {
		gs.logger.Info("starting server", "addr", gs.server.Addr)
		serverErrors <- gs.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-shutdown:
		gs.logger.Info("shutdown signal received", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()
		return gs.drain(ctx)
	}
}

func (gs *GracefulServer) drain(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.timeout)

	var firstErr error
	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Error("HTTP server shutdown failed", "error", err)
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}

	gs.mu.Lock()
	hooks := make([]func(ctx context.Context) error, len(gs.hooks))
	copy(hooks, gs.hooks)
	gs.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			gs.logger.Error("shutdown hook failed", "hook_index", i, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown hook %d: %w", i, err)
			}
		}
	}

	if firstErr == nil {
		gs.logger.Info("graceful shutdown completed")
	}
	return firstErr
}
