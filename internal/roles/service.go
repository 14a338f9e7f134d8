package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, role Role) (Role, error)
	UpdateRole(ctx context.Context, role Role) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

// CacheInvalidator drops cached permission sets after role edits.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Service handles role business logic.
type Service struct {
	repo   RepositoryPort
	cache  CacheInvalidator
	audit  audit.Recorder
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache CacheInvalidator, recorder audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, audit: recorder, logger: logger}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns one role.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, notFound(err)
	}
	return role, nil
}

// CreateRole validates and stores a custom role.
func (s *Service) CreateRole(ctx context.Context, actor rbac.Principal, in CreateInput) (Role, error) {
	if err := httpx.Validate(in); err != nil {
		return Role{}, err
	}
	name, err := parseName(in.Name)
	if err != nil {
		return Role{}, err
	}
	perms, err := parsePermissions(in.Permissions)
	if err != nil {
		return Role{}, err
	}
	role, err := s.repo.CreateRole(ctx, Role{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Permissions: perms,
		IsActive:    true,
	})
	if err != nil {
		return Role{}, conflict(err)
	}
	s.afterMutation(ctx, actor, "role.create", role)
	return role, nil
}

// UpdateRole applies a patch. System roles keep their name.
func (s *Service) UpdateRole(ctx context.Context, actor rbac.Principal, id int64, in UpdateInput) (Role, error) {
	if err := httpx.Validate(in); err != nil {
		return Role{}, err
	}
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, notFound(err)
	}
	if in.Name != nil {
		name, err := parseName(*in.Name)
		if err != nil {
			return Role{}, err
		}
		if name != role.Name && role.IsSystem {
			return Role{}, httpx.Forbidden("System roles cannot be renamed")
		}
		role.Name = name
	}
	if in.Description != nil {
		role.Description = strings.TrimSpace(*in.Description)
	}
	if in.Permissions != nil {
		perms, err := parsePermissions(*in.Permissions)
		if err != nil {
			return Role{}, err
		}
		role.Permissions = perms
	}
	if in.IsActive != nil {
		if role.IsSystem && !*in.IsActive {
			return Role{}, httpx.Forbidden("System roles cannot be deactivated")
		}
		role.IsActive = *in.IsActive
	}
	updated, err := s.repo.UpdateRole(ctx, role)
	if err != nil {
		return Role{}, conflict(notFound(err))
	}
	s.afterMutation(ctx, actor, "role.update", updated)
	return updated, nil
}

// DeleteRole removes a custom role.
func (s *Service) DeleteRole(ctx context.Context, actor rbac.Principal, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if role.IsSystem {
		return httpx.Forbidden("System roles cannot be deleted")
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return httpx.Wrap(httpx.ErrDuplicate, "Role is still assigned to users", err)
		}
		return notFound(err)
	}
	s.afterMutation(ctx, actor, "role.delete", role)
	return nil
}

func (s *Service) afterMutation(ctx context.Context, actor rbac.Principal, action string, role Role) {
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("invalidate permission cache", slog.String("action", action), slog.Any("error", err))
		}
	}
	if s.audit != nil {
		entry := audit.Entry{
			ActorID:  actor.UserID,
			Action:   action,
			Entity:   "role",
			EntityID: strconv.FormatInt(role.ID, 10),
			Meta:     map[string]any{"name": role.Name, "permissions": role.Permissions},
		}
		if err := s.audit.Record(ctx, entry); err != nil {
			s.logger.Warn("audit role mutation", slog.String("action", action), slog.Any("error", err))
		}
	}
}

func parseName(raw string) (rbac.Role, error) {
	name := rbac.ParseRole(raw)
	if len(name) < 2 || !roleNamePattern.MatchString(name.String()) {
		return "", httpx.Validation("Invalid role name")
	}
	return name, nil
}

func parsePermissions(raw []string) ([]string, error) {
	perms, unknown := rbac.ParsePermissions(raw)
	if len(unknown) > 0 {
		return nil, httpx.Wrap(httpx.ErrValidation, "Unknown permission", fmt.Errorf("unregistered: %s", strings.Join(unknown, ", ")))
	}
	return rbac.Strings(perms), nil
}

func notFound(err error) error {
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Wrap(httpx.ErrNotFound, "Role not found", err)
	}
	return err
}

func conflict(err error) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.Wrap(httpx.ErrDuplicate, "Role already exists", err)
	}
	return err
}
