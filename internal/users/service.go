package users

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (User, error)
	RoleExists(ctx context.Context, name rbac.Role) (bool, error)
	RolePermissions(ctx context.Context, name rbac.Role) ([]string, error)
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	perms    rbac.Authorizer
	audit    audit.Recorder
	logger   *slog.Logger
	hashCost int
	creation rbac.CreationPolicy
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, perms rbac.Authorizer, recorder audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, perms: perms, audit: recorder, logger: logger, hashCost: bcrypt.DefaultCost}
}

// ListUsers returns the users whose role viewer may see.
func (s *Service) ListUsers(ctx context.Context, viewer rbac.Principal) ([]User, error) {
	all, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return rbac.FilterUsersByPermission(all, viewer.Role), nil
}

// CreateUser stores a new account. The actor may only assign roles its own
// level reaches; a custom role also must not grant anything the actor lacks.
func (s *Service) CreateUser(ctx context.Context, actor rbac.Principal, in CreateInput) (User, error) {
	if err := httpx.Validate(in); err != nil {
		return User{}, err
	}
	target := rbac.ParseRole(in.Role)
	exists, err := s.repo.RoleExists(ctx, target)
	if err != nil {
		return User{}, err
	}
	if !exists {
		return User{}, httpx.Validation("Unknown role")
	}
	if !s.creation.Allows(actor.Role, target) {
		return User{}, httpx.Forbidden("Cannot assign a role above your own")
	}
	if !target.Known() {
		if err := s.checkGrantable(ctx, actor, target); err != nil {
			return User{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.CreateUser(ctx, User{
		Email:     strings.TrimSpace(in.Email),
		Name:      strings.TrimSpace(in.Name),
		Role:      target,
		PartnerID: in.PartnerID,
	}, string(hash))
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return User{}, httpx.Wrap(httpx.ErrDuplicate, "Email already registered", err)
		}
		return User{}, err
	}

	if s.audit != nil {
		err := s.audit.Record(ctx, audit.Entry{
			ActorID:  actor.UserID,
			Action:   "user.create",
			Entity:   "user",
			EntityID: strconv.FormatInt(user.ID, 10),
			Meta:     map[string]any{"role": user.Role},
		})
		if err != nil {
			s.logger.Warn("audit user create", slog.Any("error", err))
		}
	}
	return user, nil
}

func (s *Service) checkGrantable(ctx context.Context, actor rbac.Principal, target rbac.Role) error {
	if s.perms == nil {
		return httpx.ErrForbidden
	}
	roleperms, err := s.repo.RolePermissions(ctx, target)
	if err != nil {
		return err
	}
	held, err := s.perms.EffectivePermissions(ctx, actor)
	if err != nil {
		return err
	}
	owned := make(map[string]struct{}, len(held))
	for _, p := range held {
		owned[strings.ToLower(p)] = struct{}{}
	}
	for _, p := range roleperms {
		if _, ok := owned[strings.ToLower(strings.TrimSpace(p))]; !ok {
			return httpx.Forbidden("Cannot assign a role with permissions you do not hold")
		}
	}
	return nil
}
