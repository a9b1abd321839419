// Package main is the entrypoint for the Mailvend API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mailvend/mailvend/internal/cache"
	"github.com/mailvend/mailvend/internal/config"
	"github.com/mailvend/mailvend/internal/engine"
	"github.com/mailvend/mailvend/internal/handler"
	"github.com/mailvend/mailvend/internal/identity"
	"github.com/mailvend/mailvend/internal/live"
	"github.com/mailvend/mailvend/internal/metrics"
	"github.com/mailvend/mailvend/internal/middleware"
	"github.com/mailvend/mailvend/internal/repository"
	"github.com/mailvend/mailvend/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", err.Error()),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", err.Error()),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()

	tokens := identity.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.SessionTTL)
	identitySvc := identity.NewService(repo, cacheClient, tokens, logger)

	publisher := live.NewPublisher(cacheClient.Client(), cfg.AppID, logger)
	feed := live.NewRedisFeed(cacheClient.Client(), cfg.AppID, logger)
	hub := live.NewHub(feed, repo, logger, metricsRecorder)

	eng := engine.New(repo, publisher, cfg.SubmissionPrice, cfg.AcceptedEmailDomain, logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(identitySvc, cfg.AdminEmail, logger)
	submissionHandler := handler.NewSubmissionHandler(eng, hub, logger)
	adminHandler := handler.NewAdminHandler(eng, submissionHandler, logger)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, submissionHandler, adminHandler, identitySvc, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("postgres", func(_ context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(_ context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"accepted_domain", cfg.AcceptedEmailDomain,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	submissionHandler *handler.SubmissionHandler,
	adminHandler *handler.AdminHandler,
	identitySvc *identity.Service,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Verifier:   identitySvc,
		AdminEmail: cfg.AdminEmail,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.With(middleware.Auth(authCfg)).Post("/auth/signout", authHandler.SignOut)

		// Submission endpoints (require authentication)
		r.Route("/submissions", func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Post("/", submissionHandler.Submit)
			r.Get("/", submissionHandler.List)
			r.Get("/stream", submissionHandler.Stream)
		})

		// Administrative endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RequireAdmin())
			r.Patch("/submissions/{id}", adminHandler.UpdateStatus)
			r.Get("/summary", adminHandler.Summary)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

// redactURL removes credentials from a URL for safe logging.
func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "xxxxx")
	}
	return strings.ReplaceAll(parsed.String(), "xxxxx", "REDACTED")
}
