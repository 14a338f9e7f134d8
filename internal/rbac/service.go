package rbac

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// RoleStore resolves the permission list attached to a role. Unknown or
// inactive roles resolve to an empty list, not an error.
type RoleStore interface {
	PermissionsForRole(ctx context.Context, role Role) ([]string, error)
}

// Service answers "does this principal hold permission P".
type Service struct {
	store  RoleStore
	cache  PermissionCache
	logger *slog.Logger
	loads  singleflight.Group
}

// NewService constructs a Service. A nil cache falls back to process memory.
func NewService(store RoleStore, cache PermissionCache, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NewMemoryPermissionCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// EffectivePermissions returns the registered permissions held by p.
// Superadmin implicitly holds every registered permission.
func (s *Service) EffectivePermissions(ctx context.Context, p Principal) ([]string, error) {
	if p.Role == RoleSuperAdmin {
		return Strings(AllPermissions()), nil
	}
	if p.UserID == 0 || p.Role == "" {
		return []string{}, nil
	}

	if perms, ok, err := s.cache.Get(ctx, p.UserID); err != nil {
		s.logger.Warn("permission cache read", slog.Int64("user_id", p.UserID), slog.Any("error", err))
	} else if ok {
		return perms, nil
	}

	key := strconv.FormatInt(p.UserID, 10) + ":" + p.Role.String()
	// The shared load must outlive any single waiter's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	resultChan := s.loads.DoChan(key, func() (interface{}, error) {
		return s.load(loadCtx, p)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		perms := res.Val.([]string)
		out := make([]string, len(perms))
		copy(out, perms)
		return out, nil
	}
}

func (s *Service) load(ctx context.Context, p Principal) ([]string, error) {
	raw, err := s.store.PermissionsForRole(ctx, p.Role)
	if err != nil {
		return nil, err
	}
	perms, unknown := ParsePermissions(raw)
	if len(unknown) > 0 {
		s.logger.Warn("role carries unregistered permissions",
			slog.String("role", p.Role.String()), slog.Any("permissions", unknown))
	}
	out := Strings(perms)
	if err := s.cache.Set(ctx, p.UserID, out); err != nil {
		s.logger.Warn("permission cache write", slog.Int64("user_id", p.UserID), slog.Any("error", err))
	}
	return out, nil
}

// HasPermission reports whether p holds perm.
func (s *Service) HasPermission(ctx context.Context, p Principal, perm Permission) (bool, error) {
	granted, err := s.EffectivePermissions(ctx, p)
	if err != nil {
		return false, err
	}
	return hasAnyPermission(granted, []string{string(perm)}), nil
}

// Invalidate drops the cached permissions of one user.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	return s.cache.Invalidate(ctx, userID)
}

// InvalidateAll drops every cached permission set, used after role edits.
func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
