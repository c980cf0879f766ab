// Package main is the entrypoint for the Expentra API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/expentra/expentra/internal/cache"
	"github.com/expentra/expentra/internal/config"
	"github.com/expentra/expentra/internal/handler"
	"github.com/expentra/expentra/internal/metrics"
	"github.com/expentra/expentra/internal/middleware"
	"github.com/expentra/expentra/internal/repository"
	"github.com/expentra/expentra/internal/server"
	"github.com/expentra/expentra/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	recorder := metrics.NewInMemory()
	expenseService := service.NewExpenseService(repo, recorder)
	userService := service.NewUserService(repo)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	expenseHandler := handler.NewExpenseHandler(expenseService, logger)
	adminHandler := handler.NewAdminHandler(expenseService, recorder, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	tokenHandler := handler.NewTokenHandler(logger, repo)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		expenses: expenseHandler,
		admin:    adminHandler,
		users:    userHandler,
		tokens:   tokenHandler,
		metrics:  metricsHandler,
		repo:     repo,
		cache:    cacheClient,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
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

type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	expenses *handler.ExpenseHandler
	admin    *handler.AdminHandler
	users    *handler.UserHandler
	tokens   *handler.TokenHandler
	metrics  *handler.MetricsHandler
	repo     *repository.Repository
	cache    *cache.Cache
	recorder metrics.Recorder
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. StripSlashes gives the trailing-slash
	// tolerance clients of the previous API rely on.
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))
	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info and metrics endpoints
	r.Get("/", deps.base.Hello)
	r.Get("/metrics", deps.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
		Metrics:    deps.recorder,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", deps.expenses.List)
			r.Post("/", deps.expenses.Create)
			r.Get("/{id}", deps.expenses.Get)
			r.Put("/{id}", deps.expenses.Update)
			r.Patch("/{id}", deps.expenses.Update)
			r.Delete("/{id}", deps.expenses.Delete)
		})

		// Account management: reads for any authenticated user,
		// mutations and listing for staff only.
		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", deps.users.Get)
			r.With(middleware.RequireStaff()).Get("/", deps.users.List)
			r.With(middleware.RequireStaff()).Post("/", deps.users.Create)
			r.With(middleware.RequireStaff()).Delete("/{id}", deps.users.Delete)
		})

		// Staff surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff())

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", deps.admin.ListExpenses)
				r.Post("/deactivate", deps.admin.DeactivateExpenses)
				r.Post("/activate", deps.admin.ActivateExpenses)
				r.Get("/{id}", deps.admin.GetExpense)
				r.Patch("/{id}", deps.admin.UpdateExpense)
				r.Delete("/{id}", deps.admin.DeleteExpense)
			})

			r.Get("/stats", deps.admin.Stats)

			r.Route("/tokens", func(r chi.Router) {
				r.Get("/", deps.tokens.List)
				r.Post("/", deps.tokens.Create)
				r.Delete("/{id}", deps.tokens.Revoke)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
