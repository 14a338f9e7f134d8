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

	"github.com/hibiken/asynq"

	"github.com/partnerhub/partner-crm/internal/app"
	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/auth"
	"github.com/partnerhub/partner-crm/internal/clients"
	"github.com/partnerhub/partner-crm/internal/integration"
	"github.com/partnerhub/partner-crm/internal/materials"
	"github.com/partnerhub/partner-crm/internal/observability"
	"github.com/partnerhub/partner-crm/internal/partners"
	"github.com/partnerhub/partner-crm/internal/platform/cache"
	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/pricing"
	"github.com/partnerhub/partner-crm/internal/prospects"
	"github.com/partnerhub/partner-crm/internal/ratelimit"
	"github.com/partnerhub/partner-crm/internal/rbac"
	"github.com/partnerhub/partner-crm/internal/roles"
	"github.com/partnerhub/partner-crm/internal/users"
	"github.com/partnerhub/partner-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		if cfg.RateLimitStore == ratelimit.StoreRedis || cfg.PermissionCacheStore == "redis" {
			logger.Error("redis required by configured stores", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	var permCache rbac.PermissionCache
	if cfg.PermissionCacheStore == "redis" {
		permCache = rbac.NewRedisPermissionCache(redisClient, "perm")
	} else {
		permCache = rbac.NewMemoryPermissionCache()
	}
	rolesRepo := roles.NewRepository(dbpool)
	rbacService := rbac.NewService(rolesRepo, permCache, logger)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}
	refreshStore := auth.NewRedisRefreshStore(redisClient, "refresh")
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, refreshStore, rbacService, logger)
	authHandler := auth.NewHandler(logger, authService, tokens.Authenticate)

	limiter, err := ratelimit.New(ratelimit.Options{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
		Store:    cfg.RateLimitStore,
		Redis:    redisClient,
		Identify: tokens.Identify,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("init rate limiter", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := audit.NewLogger(dbpool)
	rolesService := roles.NewService(rolesRepo, rbacService, auditLogger, logger)
	usersService := users.NewService(users.NewRepository(dbpool), rbacService, auditLogger, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts, metrics.Jobs())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	httpClient := integration.NewHTTPClient()
	hubspot := integration.NewHubSpot(integration.HubSpotConfig{Token: cfg.HubSpotToken, BaseURL: cfg.HubSpotBaseURL}, httpClient)
	gemini := integration.NewGemini(integration.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL}, httpClient)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Authenticate:   tokens.Authenticate,
		RateLimit:      limiter,
		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,
		HealthChecks: map[string]app.HealthCheck{
			"postgres": dbpool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},

		AuthHandler:        authHandler,
		RolesHandler:       roles.NewHandler(logger, rolesService, rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		ClientsHandler:     clients.NewHandler(logger, clients.NewService(clients.NewRepository(dbpool)), rbacMiddleware),
		ProspectsHandler:   prospects.NewHandler(logger, prospects.NewService(prospects.NewRepository(dbpool), jobClient, logger), rbacMiddleware),
		PartnersHandler:    partners.NewHandler(logger, partners.NewService(partners.NewRepository(dbpool)), rbacMiddleware),
		PricingHandler:     pricing.NewHandler(logger, pricing.NewService(pricing.NewRepository(dbpool)), rbacMiddleware),
		MaterialsHandler:   materials.NewHandler(logger, materials.NewService(materials.NewRepository(dbpool)), rbacMiddleware),
		IntegrationHandler: integration.NewHandler(logger, hubspot, gemini, rbacMiddleware),
		AuditHandler:       audit.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), rbacMiddleware),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
