package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// ContactCreator is satisfied by *HubSpot.
type ContactCreator interface {
	Configured() bool
	CreateContact(ctx context.Context, contact Contact) (string, error)
}

// TextGenerator is satisfied by *Gemini.
type TextGenerator interface {
	Configured() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Handler struct {
	logger  *slog.Logger
	hubspot ContactCreator
	ai      TextGenerator
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, hubspot ContactCreator, ai TextGenerator, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, hubspot: hubspot, ai: ai, rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny()).Get("/status", h.status)
	r.With(h.rbac.RequireAll(rbac.PermIntegrationsHubSpot)).Post("/hubspot/contacts", h.createContact)
	r.With(h.rbac.RequireAll(rbac.PermIntegrationsAI)).Post("/ai/prospect-summary", h.prospectSummary)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, map[string]bool{
		"hubspot": h.hubspot != nil && h.hubspot.Configured(),
		"ai":      h.ai != nil && h.ai.Configured(),
	})
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	if h.hubspot == nil || !h.hubspot.Configured() {
		httpx.RespondError(w, r, ErrNotConfigured)
		return
	}
	var contact Contact
	if err := httpx.DecodeAndValidate(r, &contact); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	id, err := h.hubspot.CreateContact(r.Context(), contact)
	if err != nil {
		h.fail(w, r, "hubspot create contact", err)
		return
	}
	httpx.Success(w, http.StatusCreated, map[string]string{"id": id})
}

// SummaryRequest describes the lead to summarise.
type SummaryRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

func (s SummaryRequest) prompt() string {
	var b strings.Builder
	b.WriteString("Summarise this sales prospect for a partner manager in at most three sentences ")
	b.WriteString("and suggest one next step.\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	if s.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", s.Company)
	}
	if s.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", s.Email)
	}
	if s.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", s.Notes)
	}
	return b.String()
}

func (h *Handler) prospectSummary(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil || !h.ai.Configured() {
		httpx.RespondError(w, r, ErrNotConfigured)
		return
	}
	var req SummaryRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	summary, err := h.ai.GenerateText(r.Context(), req.prompt())
	if err != nil {
		h.fail(w, r, "gemini prospect summary", err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	httpx.RespondError(w, r, err)
}
