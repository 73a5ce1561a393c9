package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/envs/internal/api"
	"github.com/eugenenazirov/envs/internal/config"
)

// App encapsulates the inspection server and its dependencies.
type App struct {
	logger *zap.Logger
	server *http.Server
	grace  time.Duration
}

// New wires the API over an initialised registry.
func New(cfg config.Config, registry api.Registry, logger *zap.Logger) (*App, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	handler := api.NewHandler(registry)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		logger: logger,
		server: NewServer(cfg, BuildRootHandler(apiRouter)),
		grace:  cfg.ShutdownGracePeriod,
	}, nil
}

// BuildRootHandler mounts the API under /api/ and answers / with an endpoint index.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"endpoints":["/api/health","/api/env","/api/vars","/api/vars/{key}"]}`+"\n")
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// server down within the configured grace period.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown stops the server gracefully and falls back to Close once the
// grace period expires.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := a.server.Close(); closeErr != nil {
			a.logger.Error("forced close failed", zap.Error(closeErr))
			return errors.Join(err, closeErr)
		}
	}
	return nil
}

// Server returns the HTTP server instance.
func (a *App) Server() *http.Server {
	return a.server
}
