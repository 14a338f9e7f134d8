package pricing

import (
	"context"
	"strings"

	"golang.org/x/text/currency"

	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

// DefaultCurrency applies when a plan is created without one.
const DefaultCurrency = "BRL"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	code := req.Currency
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := normalizeCurrency(code)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Plan{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		AmountCents: req.AmountCents,
		Currency:    unit,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePlanRequest) (*Plan, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	var updates db.Updates
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, httpx.Validation("Invalid fields: name")
		}
		updates.Set("name", name)
	}
	if req.Description != nil {
		updates.Set("description", *req.Description)
	}
	if req.AmountCents != nil {
		updates.Set("amount_cents", *req.AmountCents)
	}
	if req.Currency != nil {
		unit, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		updates.Set("currency", unit)
	}
	if req.IsActive != nil {
		updates.Set("is_active", *req.IsActive)
	}
	if updates.Empty() {
		return s.repo.Get(ctx, id)
	}
	return s.repo.Update(ctx, id, &updates)
}

// normalizeCurrency accepts an ISO 4217 code in any case.
func normalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", httpx.Wrap(httpx.ErrValidation, "Invalid fields: currency", err)
	}
	return unit.String(), nil
}
