package clients

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Handler serves /clients.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a clients handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	page := httpx.ParsePage(r)
	q := r.URL.Query()
	clients, total, err := h.service.List(r.Context(), actor, ListClientsRequest{
		Search: strings.TrimSpace(q.Get("search")),
		Status: strings.TrimSpace(q.Get("status")),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	})
	if err != nil {
		h.fail(w, r, "list clients failed", err)
		return
	}
	httpx.SuccessWithMeta(w, http.StatusOK, clients, httpx.NewPagination(page, total))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	client, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, "get client failed", err)
		return
	}
	httpx.Success(w, http.StatusOK, client)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	client, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, "create client failed", err)
		return
	}
	httpx.Success(w, http.StatusCreated, client)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	var req UpdateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	client, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.fail(w, r, "update client failed", err)
		return
	}
	httpx.Success(w, http.StatusOK, client)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, "delete client failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if status, _, _ := httpx.Classify(err); status >= http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
	}
	httpx.RespondError(w, r, err)
}
