package materials

import (
	"context"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, category string) ([]Material, error) {
	return s.repo.List(ctx, strings.ToLower(strings.TrimSpace(category)))
}

func (s *Service) Create(ctx context.Context, actor rbac.Principal, req CreateMaterialRequest) (*Material, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Material{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		URL:         req.URL,
		CreatedBy:   actor.UserID,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
