package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/auth"
	"github.com/partnerhub/partner-crm/internal/clients"
	"github.com/partnerhub/partner-crm/internal/integration"
	"github.com/partnerhub/partner-crm/internal/materials"
	"github.com/partnerhub/partner-crm/internal/observability"
	"github.com/partnerhub/partner-crm/internal/partners"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/pricing"
	"github.com/partnerhub/partner-crm/internal/prospects"
	"github.com/partnerhub/partner-crm/internal/rbac"
	"github.com/partnerhub/partner-crm/internal/roles"
	"github.com/partnerhub/partner-crm/internal/users"
	"github.com/partnerhub/partner-crm/jobs"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Authenticate   func(http.Handler) http.Handler
	RateLimit      func(http.Handler) http.Handler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
	HealthChecks   map[string]HealthCheck

	AuthHandler        *auth.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler
	UsersHandler       *users.Handler
	ClientsHandler     *clients.Handler
	ProspectsHandler   *prospects.Handler
	PartnersHandler    *partners.Handler
	PricingHandler     *pricing.Handler
	MaterialsHandler   *materials.Handler
	IntegrationHandler *integration.Handler
	AuditHandler       *audit.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:    params.Logger,
		Config:    params.Config,
		Metrics:   params.Metrics,
		RateLimit: params.RateLimit,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)
	r.NotFound(httpx.NotFoundHandler)
	r.MethodNotAllowed(httpx.MethodNotAllowedHandler)

	r.Get("/healthz", healthz(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Authenticate)

		r.Route("/roles", func(r chi.Router) {
			params.PermissionsHandler.MountRoutes(r)
			params.RolesHandler.MountRoutes(r)
		})
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/prospects", params.ProspectsHandler.MountRoutes)
		r.Route("/partners", params.PartnersHandler.MountRoutes)
		r.Route("/pricing", params.PricingHandler.MountRoutes)
		r.Route("/materials", params.MaterialsHandler.MountRoutes)
		r.Route("/integrations", params.IntegrationHandler.MountRoutes)
		r.Route("/audit-logs", params.AuditHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireRole(rbac.RoleAdmin))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "down"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "up"
		}
		httpx.Success(w, code, status)
	}
}
