package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermUsersView)).Get("/", h.listUsers)
	r.With(h.rbac.RequireAny(rbac.PermUsersCreate)).Post("/", h.createUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	viewer, _ := rbac.PrincipalFromContext(r.Context())
	users, err := h.service.ListUsers(r.Context(), viewer)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	page := httpx.ParsePage(r)
	meta := httpx.NewPagination(page, len(users))
	start := min(page.Offset(), len(users))
	end := min(start+page.PerPage, len(users))
	httpx.SuccessWithMeta(w, http.StatusOK, users[start:end], meta)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	user, err := h.service.CreateUser(r.Context(), actor, in)
	if err != nil {
		if status, _, _ := httpx.Classify(err); status >= http.StatusInternalServerError {
			h.logger.Error("create user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, user)
}
