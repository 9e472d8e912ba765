// Package main is the entrypoint for the Tagebuch web server.
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

	"github.com/exguesich/tagebuch-app/internal/config"
	"github.com/exguesich/tagebuch-app/internal/handler"
	"github.com/exguesich/tagebuch-app/internal/middleware"
	"github.com/exguesich/tagebuch-app/internal/repository"
	"github.com/exguesich/tagebuch-app/internal/server"
	"github.com/exguesich/tagebuch-app/internal/service"
	"github.com/exguesich/tagebuch-app/internal/session"
	"github.com/exguesich/tagebuch-app/internal/storage"
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
	repo, err := repository.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "postgres", cfg.UsesPostgres())

	// Initialize upload storage
	uploads, err := storage.New(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		logger.Error("failed to prepare upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	// Initialize session store. Redis when configured, otherwise the
	// relational database.
	var store session.Store
	var redisStore *session.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		store = redisStore
		logger.Info("sessions stored in Redis")
	} else {
		store = session.NewDBStore(repo)
		logger.Info("sessions stored in database")
	}
	sessions := session.NewManager(store, cfg.SessionTTL)

	// Initialize services
	authSvc := service.NewAuthService(repo)
	entrySvc := service.NewEntryService(repo, uploads)
	catSvc := service.NewCategoryService(repo)

	// Initialize handler and router
	h := handler.New(authSvc, entrySvc, catSvc, sessions, repo, uploads.Dir(), logger)
	r := setupRouter(h, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("database", func(context.Context) error {
		return repo.Close()
	})
	if redisStore != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return redisStore.Close()
		})
	}

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

// setupRouter layers cross-cutting middleware around the application routes.
func setupRouter(h *handler.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)

	r.Mount("/", h.Routes())

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
