package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

// Authorizer resolves the permissions of a principal.
type Authorizer interface {
	EffectivePermissions(ctx context.Context, p Principal) ([]string, error)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service Authorizer
	Logger  *slog.Logger
}

// RequireAny ensures the current principal has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require("rbac require any", func(granted []string) bool {
		return hasAnyPermission(granted, normalized)
	}, len(normalized) == 0)
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require("rbac require all", func(granted []string) bool {
		return hasAllPermissions(granted, normalized)
	}, len(normalized) == 0)
}

// RequireRole ensures the principal's hierarchy level reaches min.
func (m Middleware) RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, r, httpx.ErrUnauthorized)
				return
			}
			if !p.AtLeast(min) {
				httpx.RespondError(w, r, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) require(op string, check func([]string) bool, passthrough bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, r, httpx.ErrUnauthorized)
				return
			}
			if passthrough {
				next.ServeHTTP(w, r)
				return
			}
			granted, err := m.Service.EffectivePermissions(r.Context(), p)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error(op, slog.Int64("user_id", p.UserID), slog.Any("error", err))
				}
				httpx.RespondError(w, r, err)
				return
			}
			if check(granted) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, r, httpx.ErrForbidden)
		})
	}
}

func normalizePermissions(perms []Permission) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		s := strings.TrimSpace(strings.ToLower(string(p)))
		if s == "" {
			continue
		}
		unique[s] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
