package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

// PermissionsHandler exposes the permission registry and the caller's
// position in the role hierarchy.
type PermissionsHandler struct {
	logger *slog.Logger
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, rbac: rbac}
}

// MountRoutes registers permission routes. It is mounted under /roles.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermRolesView))
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny())
		r.Get("/hierarchy", h.hierarchy)
	})
}

type permissionsResponse struct {
	Permissions []PermissionInfo            `json:"permissions"`
	Grouped     map[string][]PermissionInfo `json:"grouped"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, permissionsResponse{
		Permissions: Registry(),
		Grouped:     GroupedRegistry(),
	})
}

type hierarchyResponse struct {
	Role      Role   `json:"role"`
	Level     int    `json:"level"`
	Creatable []Role `json:"creatable"`
	Viewable  []Role `json:"viewable"`
}

func (h *PermissionsHandler) hierarchy(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrUnauthorized)
		return
	}
	httpx.Success(w, http.StatusOK, hierarchyResponse{
		Role:      p.Role,
		Level:     p.Role.Level(),
		Creatable: CreatableRoles(p.Role),
		Viewable:  ViewableRoles(p.Role),
	})
}
