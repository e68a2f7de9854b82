// Package wire assembles the application's dependency graph.
package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sevigo/code-reviewer/internal/app"
	"github.com/sevigo/code-reviewer/internal/auth"
	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/db"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/logger"
	"github.com/sevigo/code-reviewer/internal/metrics"
	"github.com/sevigo/code-reviewer/internal/ratelimit"
	"github.com/sevigo/code-reviewer/internal/review"
	"github.com/sevigo/code-reviewer/internal/server"
	"github.com/sevigo/code-reviewer/internal/storage"
)

// AppSet lists every provider of the service graph.
var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	llm.NewPromptManager,
	llm.NewClientFromConfig,
	review.NewFromConfig,
	metrics.New,
	provideLoggerConfig,
	provideSlogLogger,
	provideRegistry,
	provideStore,
	provideVerifier,
	provideLimiter,
	provideServerDeps,
	wire.Bind(new(core.Provider), new(*llm.Client)),
	wire.Bind(new(core.Reviewer), new(*review.Orchestrator)),
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.LoggerConfig
}

func provideSlogLogger(loggerConfig logger.Config) *slog.Logger {
	l := logger.NewLogger(loggerConfig, nil)
	slog.SetDefault(l)
	return l
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// provideStore opens the configured history store. The cleanup closes the
// database pool when one was opened.
func provideStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory review history, records are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	case config.DriverPostgres:
		conn, cleanup, err := db.NewDatabase(cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewStore(conn.DB), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func provideVerifier(cfg *config.Config) *auth.Verifier {
	return auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func provideServerDeps(
	reviewer core.Reviewer,
	store storage.Store,
	tokens *auth.Verifier,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) server.Deps {
	return server.Deps{
		Reviewer: reviewer,
		Store:    store,
		Tokens:   tokens,
		Limiter:  limiter,
		Metrics:  m,
		Gatherer: gatherer,
	}
}

// InitializeReviewer builds only the review pipeline, for the CLI.
func InitializeReviewer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*review.Orchestrator, error) {
	pm, err := llm.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}
	client, err := llm.NewClientFromConfig(ctx, cfg, pm, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}
	return review.NewFromConfig(client, cfg, nil, logger), nil
}
