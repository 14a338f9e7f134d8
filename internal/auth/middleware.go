package auth

import (
	"net/http"
	"strings"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// Authenticate requires a valid access token and stores its principal in the
// request context.
func (m *TokenManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r)
		if !ok {
			httpx.RespondError(w, r, httpx.ErrUnauthorized)
			return
		}
		claims, err := m.Parse(raw, TokenTypeAccess)
		if err != nil {
			httpx.RespondError(w, r, err)
			return
		}
		ctx := rbac.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify returns the user id of a valid bearer access token without
// rejecting the request. Rate limiting keys on it.
func (m *TokenManager) Identify(r *http.Request) (int64, bool) {
	raw, ok := BearerToken(r)
	if !ok {
		return 0, false
	}
	claims, err := m.Parse(raw, TokenTypeAccess)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
