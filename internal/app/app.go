// Package app initializes and orchestrates the main components of the code
// review service.
package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/server"
)

// App holds the main application components.
type App struct {
	cfg    *config.Config
	server *server.Server
	client *llm.Client
	logger *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(cfg *config.Config, srv *server.Server, client *llm.Client, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		server: srv,
		client: client,
		logger: logger,
	}
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	models := a.client.Models()
	if len(models) == 0 {
		a.logger.Warn("no review models are configured, every review will report no models available")
	}

	a.logger.Info("starting code reviewer",
		"port", a.cfg.Server.Port,
		"models", models,
		"default_model", a.cfg.AI.DefaultModel,
		"fallback_order", a.cfg.AI.FallbackOrder,
		"fallback_policy", a.cfg.AI.FallbackPolicy,
		"store", a.cfg.Database.Driver,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop()
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("code reviewer stopped with errors", "error", err)
		return err
	}
	a.logger.Info("code reviewer stopped successfully")
	return nil
}

// Stop shuts down the HTTP server, letting in-flight requests finish.
func (a *App) Stop() error {
	a.logger.Info("shutting down code reviewer services")
	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}
	return nil
}
