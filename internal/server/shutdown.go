package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"olist-dashboard/internal/config"
)

// ShutdownHook releases a resource once the HTTP server has drained.
type ShutdownHook func(ctx context.Context) error

type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	cfg    config.ServerConfig

	mu    sync.Mutex
	hooks []ShutdownHook
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, cfg *config.Config) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		cfg:    cfg.Server,
	}
}

func (gs *GracefulServer) RegisterShutdownHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, hook)
}

// ListenAndServe serves until the listener fails, ctx is cancelled, or the
// process receives SIGINT or SIGTERM, then runs the shutdown hooks.
func (gs *GracefulServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", gs.server.Addr, err)
	}
	return gs.Serve(ctx, ln)
}

func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		gs.logger.Info("dashboard listening",
			"addr", ln.Addr().String(),
			"read_timeout", gs.cfg.ReadTimeout,
			"write_timeout", gs.cfg.WriteTimeout,
		)
		served <- gs.server.Serve(ln)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)

	case <-sigCtx.Done():
		gs.logger.Info("shutdown requested", "cause", context.Cause(sigCtx))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gs.cfg.ShutdownTimeout)
		defer cancel()
		return gs.shutdown(shutdownCtx)
	}
}

// shutdown drains in-flight requests first so no handler sees a released
// resource, then runs every hook concurrently. Hooks run even when draining
// times out.
func (gs *GracefulServer) shutdown(ctx context.Context) error {
	gs.logger.Info("draining connections", "timeout", gs.cfg.ShutdownTimeout)

	var drainErr error
	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Warn("connections did not drain in time", "error", err)
		drainErr = fmt.Errorf("drain connections: %w", err)
	}

	gs.mu.Lock()
	hooks := slices.Clone(gs.hooks)
	gs.mu.Unlock()

	var g errgroup.Group
	for i, hook := range hooks {
		g.Go(func() error {
			if err := hook(ctx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook", i, "error", err)
				return fmt.Errorf("shutdown hook %d: %w", i, err)
			}
			return nil
		})
	}

	if err := errors.Join(drainErr, g.Wait()); err != nil {
		return err
	}
	gs.logger.Info("shutdown complete")
	return nil
}
