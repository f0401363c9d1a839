// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.

Route map:

	/health, /ready, /metrics     infrastructure
	/api/v1/works[...]            JSON API for works, comments and summaries
	/api/v1/auth                  JSON session API
	/auth                         OAuth browser flow
	/ambience                     background audio toggle
	/live                         WebSocket snapshots (no request timeout)
	/                             server-rendered pages
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/narratives/internal/ambience"
	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/identity"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/config"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/metrics"
	"github.com/taibuivan/narratives/internal/platform/middleware"
	"github.com/taibuivan/narratives/internal/summary"
	"github.com/taibuivan/narratives/internal/web"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth resolves sessions and serves the sign-in flow.
	Auth     identity.AuthAPI
	Identity *identity.Handler

	Works    *literature.Handler
	Comments *comment.Handler
	Summary  *summary.Handler
	Ambience *ambience.Handler

	// Web serves the pages and the live feed.
	Web *web.Handler

	Metrics *metrics.Registry
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(h.Metrics.Instrument)
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(identity.Middleware(h.Auth))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// # Live Feed
	// Long-lived connections stay outside the request timeout.
	r.Route("/live", h.Web.RegisterLiveRoutes)

	r.Group(func(timed chi.Router) {
		timed.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		// # Application API
		// Domain-specific route groups mounted under versioned prefix.
		timed.Route("/api/v1", func(api chi.Router) {
			api.Route("/auth", h.Identity.RegisterAPIRoutes)
			api.Route("/works", func(works chi.Router) {
				h.Works.RegisterRoutes(works)
				h.Summary.RegisterRoutes(works)
				works.Route("/{id}/comments", h.Comments.RegisterRoutes)
			})
		})

		// # Browser Surface
		timed.Route("/auth", h.Identity.RegisterRoutes)
		timed.Route("/ambience", h.Ambience.RegisterRoutes)
		h.Web.RegisterRoutes(timed)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
