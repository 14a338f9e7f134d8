package clients

import (
	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/rbac"
)

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermClientsView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.With(h.rbac.RequireAll(rbac.PermClientsCreate)).Post("/", h.Create)
	r.With(h.rbac.RequireAll(rbac.PermClientsEdit)).Put("/{id}", h.Update)
	r.With(h.rbac.RequireAll(rbac.PermClientsDelete)).Delete("/{id}", h.Delete)
}
