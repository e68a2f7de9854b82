package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/metrics"
	"github.com/sevigo/code-reviewer/internal/ratelimit"
	"github.com/sevigo/code-reviewer/internal/server/handler"
	"github.com/sevigo/code-reviewer/internal/server/middleware"
	"github.com/sevigo/code-reviewer/internal/storage"
)

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Reviewer       core.Reviewer
	Store          storage.Store
	Tokens         middleware.TokenParser
	Limiter        *ratelimit.Limiter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	// TrustProxy enables chi's RealIP, so forwarding headers decide the
	// address the rate limiter keys on.
	TrustProxy     bool
}

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(deps Deps, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{handler.HeaderOutcome, handler.HeaderModel},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello World"))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/ai", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(middleware.RateLimit(deps.Limiter, deps.Metrics, logger))
		}
		reviewHandler := handler.NewReviewHandler(deps.Reviewer, deps.Metrics, logger)
		r.Post("/get-review", reviewHandler.Handle)
	})

	r.Route("/review", func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, logger))
		historyHandler := handler.NewHistoryHandler(deps.Store, logger)
		r.Post("/save", historyHandler.Save)
		r.Get("/history", historyHandler.List)
	})

	return r
}
