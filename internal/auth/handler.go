package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authn   func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. authn guards the endpoints that
// need an access token.
func NewHandler(logger *slog.Logger, service *Service, authn func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, authn: authn}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(h.authn)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Post("/permissions/refresh", h.handlePermissionsRefresh)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	httpx.Success(w, http.StatusOK, session)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, "refresh", err)
		return
	}
	httpx.Success(w, http.StatusOK, session)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	var req logoutRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, r, err)
			return
		}
	}
	if err := h.service.Logout(r.Context(), p, req.RefreshToken); err != nil {
		h.fail(w, r, "logout", err)
		return
	}
	httpx.SuccessMessage(w, r, http.StatusOK, nil, "Logged out")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	profile, err := h.service.Profile(r.Context(), p)
	if err != nil {
		h.fail(w, r, "profile", err)
		return
	}
	httpx.Success(w, http.StatusOK, profile)
}

func (h *Handler) handlePermissionsRefresh(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	perms, err := h.service.RefreshPermissions(r.Context(), p)
	if err != nil {
		h.fail(w, r, "refresh permissions", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"permissions": perms})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, _, _ := httpx.Classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, r, err)
}
