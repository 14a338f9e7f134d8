package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = httpx.Unauthorized("Invalid credentials")

// PermissionResolver loads and forgets effective permissions.
type PermissionResolver interface {
	EffectivePermissions(ctx context.Context, p rbac.Principal) ([]string, error)
	Invalidate(ctx context.Context, userID int64) error
}

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenManager
	refresh RefreshStore
	perms   PermissionResolver
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, refresh RefreshStore, perms PermissionResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, refresh: refresh, perms: perms, logger: logger}
}

// Login validates email/password credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RecordLogin(ctx, user.ID, s.tokens.Now()); err != nil {
		s.logger.Warn("record login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return session, nil
}

// Refresh redeems a refresh token and rotates it.
func (s *Service) Refresh(ctx context.Context, raw string) (*Session, error) {
	claims, err := s.tokens.Parse(raw, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Consume(ctx, claims.ID, claims.UserID); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.Unauthorized("Invalid token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, httpx.Unauthorized("Invalid token")
	}
	// The role may have changed since the old pair was issued.
	if err := s.perms.Invalidate(ctx, user.ID); err != nil {
		s.logger.Warn("invalidate permissions", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return s.issue(ctx, user)
}

func (s *Service) issue(ctx context.Context, user *User) (*Session, error) {
	pair, refreshClaims, err := s.tokens.Issue(user.Principal())
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Register(ctx, refreshClaims.ID, user.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}
	return &Session{User: user.View(), Tokens: pair}, nil
}

// Logout revokes the refresh token when supplied and drops cached permissions.
func (s *Service) Logout(ctx context.Context, p rbac.Principal, refreshToken string) error {
	if refreshToken != "" {
		claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
		switch {
		case err == nil && claims.UserID == p.UserID:
			if err := s.refresh.Revoke(ctx, claims.ID); err != nil {
				return err
			}
		case err == nil:
			return httpx.Forbidden("Access denied")
		case errors.Is(err, httpx.ErrTokenExpired):
			// Already unusable.
		default:
			return err
		}
	}
	return s.perms.Invalidate(ctx, p.UserID)
}

// Profile returns the caller's user record, level and permissions.
func (s *Service) Profile(ctx context.Context, p rbac.Principal) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	perms, err := s.perms.EffectivePermissions(ctx, user.Principal())
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:        user.View(),
		Role:        user.Role,
		Level:       user.Role.Level(),
		Permissions: perms,
	}, nil
}

// RefreshPermissions forgets and reloads the caller's permissions.
func (s *Service) RefreshPermissions(ctx context.Context, p rbac.Principal) ([]string, error) {
	if err := s.perms.Invalidate(ctx, p.UserID); err != nil {
		return nil, err
	}
	return s.perms.EffectivePermissions(ctx, p)
}
