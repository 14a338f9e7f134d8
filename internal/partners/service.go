package partners

import (
	"context"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreatePartnerRequest) (*Partner, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	tier := req.Tier
	if tier == "" {
		tier = TierBronze
	}
	return s.repo.Create(ctx, Partner{
		Name:           strings.TrimSpace(req.Name),
		Document:       req.Document,
		ContactEmail:   req.ContactEmail,
		Tier:           tier,
		CommissionRate: req.CommissionRate,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Partner, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, page httpx.Page) ([]Partner, int, error) {
	return s.repo.List(ctx, activeOnly, page.PerPage, page.Offset())
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePartnerRequest) (*Partner, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	var updates db.Updates
	if req.Name != nil {
		updates.Set("name", strings.TrimSpace(*req.Name))
	}
	if req.Document != nil {
		updates.Set("document", *req.Document)
	}
	if req.ContactEmail != nil {
		updates.Set("contact_email", *req.ContactEmail)
	}
	if req.Tier != nil {
		updates.Set("tier", *req.Tier)
	}
	if req.CommissionRate != nil {
		updates.Set("commission_rate", *req.CommissionRate)
	}
	if req.IsActive != nil {
		updates.Set("is_active", *req.IsActive)
	}
	if updates.Empty() {
		return s.repo.Get(ctx, id)
	}
	return s.repo.Update(ctx, id, &updates)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
