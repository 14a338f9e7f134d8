package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Service applies owner scoping and validation to client operations.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// scoped reports whether p only sees the clients it owns. Managers and above
// see every client.
func scoped(p rbac.Principal) bool {
	return !p.AtLeast(rbac.RoleManager)
}

// Create stores a client owned by actor.
func (s *Service) Create(ctx context.Context, actor rbac.Principal, req CreateClientRequest) (*Client, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, Client{
		Name:      strings.TrimSpace(req.Name),
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Document:  req.Document,
		Status:    StatusActive,
		OwnerID:   actor.UserID,
		PartnerID: req.PartnerID,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// Get returns the client; records outside actor's scope are not found.
func (s *Service) Get(ctx context.Context, actor rbac.Principal, id int64) (*Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Foreign clients are reported as missing rather than forbidden.
	if scoped(actor) && c.OwnerID != actor.UserID {
		return nil, httpx.ErrNotFound
	}
	return c, nil
}

// List pages through the clients actor may see.
func (s *Service) List(ctx context.Context, actor rbac.Principal, req ListClientsRequest) ([]Client, int, error) {
	if scoped(actor) {
		owner := actor.UserID
		req.OwnerID = &owner
	}
	return s.repo.List(ctx, req)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, actor rbac.Principal, id int64, req UpdateClientRequest) (*Client, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, actor, id)
	if err != nil {
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
	if req.Company != nil {
		updates.Set("company", *req.Company)
	}
	if req.Email != nil {
		updates.Set("email", *req.Email)
	}
	if req.Phone != nil {
		updates.Set("phone", *req.Phone)
	}
	if req.Document != nil {
		updates.Set("document", *req.Document)
	}
	if req.Status != nil {
		updates.Set("status", *req.Status)
	}
	if req.Notes != nil {
		updates.Set("notes", *req.Notes)
	}
	if updates.Empty() {
		return existing, nil
	}
	c, err := s.repo.Update(ctx, id, &updates)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

// Delete removes a client within actor's scope.
func (s *Service) Delete(ctx context.Context, actor rbac.Principal, id int64) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
