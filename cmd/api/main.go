// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Narratives web server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Install tracing.
//  4. Connect to PostgreSQL (pgxpool).
//  5. Connect to Redis.
//  6. Run database migrations (idempotent).
//  7. Start the change feed and the auth API.
//  8. Wire HTTP handlers.
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taibuivan/narratives/internal/ambience"
	"github.com/taibuivan/narratives/internal/api"
	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/identity"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/config"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/metrics"
	"github.com/taibuivan/narratives/internal/platform/middleware"
	"github.com/taibuivan/narratives/internal/platform/migration"
	pgstore "github.com/taibuivan/narratives/internal/platform/postgres"
	redisstore "github.com/taibuivan/narratives/internal/platform/redis"
	"github.com/taibuivan/narratives/internal/platform/sec"
	"github.com/taibuivan/narratives/internal/platform/telemetry"
	"github.com/taibuivan/narratives/internal/site"
	"github.com/taibuivan/narratives/internal/summary"
	"github.com/taibuivan/narratives/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("oauth_configured", cfg.OAuthConfigured()),
	)

	// Root context for background work; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Tracing ────────────────────────────────────────────────────────
	shutdownTracing, err := telemetry.Setup(startupCtx, cfg.OTelEndpoint, cfg.Environment)
	must(log, err, "set up tracing")
	defer func() {
		if terr := shutdownTracing(context.Background()); terr != nil {
			log.Error("tracing_shutdown_failed", slog.Any("error", terr))
		}
	}()

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Gateway: change feed + auth ────────────────────────────────────
	registry := metrics.New()

	hub := gateway.NewHub(log, registry.RealtimeSubscriptions)
	listener := gateway.NewListener(pool, hub, constants.ChangeFeedChannel, eventCounter{registry.RealtimeEvents}, log)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		if lerr := listener.Run(rootCtx); lerr != nil {
			log.Error("realtime_listener_stopped", slog.Any("error", lerr))
		}
	}()

	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	providers := map[string]gateway.Provider{}
	if cfg.OAuthConfigured() {
		providers[constants.DefaultOAuthProvider] = gateway.NewGitHubProvider(
			cfg.GitHubClientID, cfg.GitHubClientSecret,
			identity.CallbackURL(cfg.PublicOrigin, constants.DefaultOAuthProvider),
		)
	}

	auth := gateway.NewAuth(gateway.AuthConfig{
		Store:      gateway.NewRedisSessionStore(rdb),
		Bus:        gateway.NewRedisEventBus(rdb, constants.AuthEventsChannel, log),
		Tokens:     tokens,
		Providers:  providers,
		StateTTL:   constants.OAuthStateTTL,
		SessionTTL: constants.SessionTTL,
		Logger:     log,
	})
	client := gateway.New(pool, hub, auth)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	content, err := site.Load(cfg.SiteContentPath)
	must(log, err, "load site content")

	var summarizer summary.Summarizer
	if cfg.GeminiAPIKey != "" {
		gemini, gerr := summary.NewGemini(startupCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		must(log, gerr, "create summarizer")
		summarizer = gemini
	}
	summaries := summary.NewService(summarizer, log)

	workRepository := literature.NewGatewayRepository(client)
	commentRepository := comment.NewGatewayRepository(client)

	// The first fetch waits for LISTEN so changes committed meanwhile reach the list.
	select {
	case <-listener.Started():
	case <-listenerDone:
		log.Warn("works_loaded_without_change_feed")
	case <-startupCtx.Done():
		must(log, startupCtx.Err(), "wait for change feed")
	}

	works := literature.NewList(workRepository, client.Realtime(), log)
	if werr := works.Activate(startupCtx); werr != nil {
		// The list keeps the error for the pages; a later Refetch recovers.
		log.Warn("works_initial_load_failed", slog.Any("error", werr))
	}
	defer works.Deactivate()

	commentLimit := middleware.NewRateLimiter(rootCtx, constants.CommentRateLimitRPS, constants.CommentRateLimitBurst)

	pages, err := web.NewHandler(web.Deps{
		Works:        works,
		WorkRepo:     workRepository,
		CommentRepo:  commentRepository,
		Feed:         client.Realtime(),
		Auth:         client.Auth(),
		Summary:      summaries,
		Content:      content,
		Logger:       log,
		CommentLimit: commentLimit.Middleware,
		LiveGauge:    registry.LiveConnections,
	})
	must(log, err, "parse page templates")

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "postgres", Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
		{Name: "change_feed", Ping: listener.Ready},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      client.Auth(),
		Identity:  identity.NewHandler(client.Auth(), cfg.PublicOrigin, cfg.IsProduction()),
		Works:     literature.NewHandler(literature.NewService(workRepository, log)),
		Comments:  comment.NewHandler(comment.NewService(commentRepository, log), commentLimit.Middleware),
		Summary:   summary.NewHandler(summaries, workRepository),
		Ambience:  ambience.NewHandler(content.Ambience.TrackURL),
		Web:       pages,
		Metrics:   registry,
	}

	server := api.NewServer(rootCtx, cfg, log, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// eventCounter counts change notifications by table and type.
type eventCounter struct {
	vec *prometheus.CounterVec
}

func (c eventCounter) Observe(table string, event gateway.EventType) {
	c.vec.WithLabelValues(table, string(event)).Inc()
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
