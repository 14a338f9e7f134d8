package prospects

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/clients"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// HeaderIdempotencyKey is honoured on POST /prospects.
const HeaderIdempotencyKey = "Idempotency-Key"

// Handler serves /prospects.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a prospects handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers prospect routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermProspectsView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.RequireAll(rbac.PermProspectsCreate)).Post("/", h.create)
	r.With(h.rbac.RequireAll(rbac.PermProspectsValidate)).Post("/{id}/validate", h.validate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	page := httpx.ParsePage(r)
	items, total, err := h.service.List(r.Context(), actor, ListProspectsRequest{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	})
	if err != nil {
		h.fail(w, r, "list prospects failed", err)
		return
	}
	httpx.SuccessWithMeta(w, http.StatusOK, items, httpx.NewPagination(page, total))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	p, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "get prospect failed", err)
		return
	}
	httpx.Success(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	var req CreateProspectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	p, replayed, err := h.service.Create(r.Context(), actor, req, r.Header.Get(HeaderIdempotencyKey))
	if err != nil {
		h.fail(w, r, "create prospect failed", err)
		return
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
		httpx.Success(w, http.StatusOK, p)
		return
	}
	httpx.Success(w, http.StatusCreated, p)
}

type validateResponse struct {
	Prospect *Prospect       `json:"prospect"`
	Client   *clients.Client `json:"client,omitempty"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	var req ValidateProspectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	p, client, err := h.service.Validate(r.Context(), actor, id, req)
	if err != nil {
		h.fail(w, r, "validate prospect failed", err)
		return
	}
	httpx.Success(w, http.StatusOK, validateResponse{Prospect: p, Client: client})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if status, _, _ := httpx.Classify(err); status >= http.StatusInternalServerError {
		h.logger.Error(msg, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, r, err)
}
