// Package main is the entrypoint for the ChatForge API server.
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

	"github.com/chatforge/chatforge/internal/cache"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/handler"
	"github.com/chatforge/chatforge/internal/metrics"
	"github.com/chatforge/chatforge/internal/middleware"
	"github.com/chatforge/chatforge/internal/provider"
	"github.com/chatforge/chatforge/internal/repository"
	"github.com/chatforge/chatforge/internal/secrets"
	"github.com/chatforge/chatforge/internal/server"
	"github.com/chatforge/chatforge/internal/service"
	"github.com/chatforge/chatforge/internal/usage"
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

	encryptor, err := secrets.New(cfg.EncryptionKey)
	if err != nil {
		logger.Error("failed to initialize credential encryption", "error", err)
		os.Exit(1)
	}

	registry := provider.DefaultRegistry(cfg.OllamaTimeout)
	metricsRecorder := metrics.NewInMemory()

	usagePublisher := usage.NewPublisher(cacheClient.Client(), logger, metricsRecorder)

	accountService := service.NewAccountService(repo, []byte(cfg.JWTSecret), cfg.JWTTTL)
	credentialService := service.NewCredentialService(repo, encryptor, registry)
	conversationService := service.NewConversationService(repo, registry, metricsRecorder)
	chatService := service.NewChatService(repo, repo, encryptor, registry, usagePublisher, metricsRecorder, logger)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accountService, logger)
	credentialHandler := handler.NewCredentialHandler(credentialService, logger)
	conversationHandler := handler.NewConversationHandler(conversationService, chatService, logger)
	catalogHandler := handler.NewCatalogHandler(registry)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	r := setupRouter(h, healthHandler, authHandler, credentialHandler, conversationHandler, catalogHandler, metricsHandler, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if cfg.UsageWorkerEnabled {
		worker := usage.NewWorker(cacheClient.Client(), repo, logger, usage.NewConsumerID(), metricsRecorder)
		workerCtx, workerCancel := context.WithCancel(ctx)
		go func() {
			if err := worker.Run(workerCtx); err != nil && err != context.Canceled {
				logger.Error("usage worker exited", "error", err)
			}
		}()
		srv.OnShutdown("usage worker", func(shutdownCtx context.Context) error {
			defer workerCancel()
			return worker.Shutdown(shutdownCtx)
		})
		logger.Info("usage worker started")
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"providers", len(registry.List()),
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	credentialHandler *handler.CredentialHandler,
	conversationHandler *handler.ConversationHandler,
	catalogHandler *handler.CatalogHandler,
	metricsHandler *handler.MetricsHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	authCfg := middleware.AuthConfig{
		Logger:    logger,
		JWTSecret: []byte(cfg.JWTSecret),
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       logger,
		Cache:        cacheClient,
		APIEnabled:   cfg.RateLimitAPIEnabled,
		APIPerMinute: cfg.RateLimitAPIPerMinute,
		APIBurst:     cfg.RateLimitAPIBurst,
		LoginEnabled: cfg.RateLimitLoginEnabled,
		LoginRPS:     cfg.RateLimitLoginRPS,
		LoginBurst:   cfg.RateLimitLoginBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Registration and login are IP rate limited, not authenticated
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			r.Route("/keys", func(r chi.Router) {
				r.Get("/", credentialHandler.List)
				r.Post("/", credentialHandler.Create)
				r.Put("/{id}", credentialHandler.Update)
				r.Delete("/{id}", credentialHandler.Delete)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)
				r.Get("/{id}", conversationHandler.Get)
				r.Patch("/{id}", conversationHandler.Rename)
				r.Delete("/{id}", conversationHandler.Delete)
				r.Post("/{id}/messages", conversationHandler.SendMessage)
			})

			r.Route("/providers", func(r chi.Router) {
				r.Get("/", catalogHandler.ListProviders)
				r.Get("/{provider}/models", catalogHandler.ListModels)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
