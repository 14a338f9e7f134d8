package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuthorizer map[int64][]string

func (s staticAuthorizer) EffectivePermissions(_ context.Context, p Principal) ([]string, error) {
	return s[p.UserID], nil
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/prospects/1/validate", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *p))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMiddlewareRequireAny(t *testing.T) {
	m := Middleware{Service: staticAuthorizer{
		1: {"prospects.validate"},
		2: {"prospects.view"},
	}}
	mw := m.RequireAny(PermProspectsValidate)

	rr := serve(t, mw, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	rr = serve(t, mw, &Principal{UserID: 2, Role: RolePartner})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(t, mw, &Principal{UserID: 1, Role: RoleManager})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMiddlewareRequireAll(t *testing.T) {
	m := Middleware{Service: staticAuthorizer{1: {"roles.view", "roles.edit"}, 2: {"roles.view"}}}
	mw := m.RequireAll(PermRolesView, PermRolesEdit)

	assert.Equal(t, http.StatusNoContent, serve(t, mw, &Principal{UserID: 1, Role: RoleAdmin}).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, mw, &Principal{UserID: 2, Role: RoleManager}).Code)
}

func TestMiddlewareRequireRole(t *testing.T) {
	mw := Middleware{}.RequireRole(RoleManager)

	assert.Equal(t, http.StatusUnauthorized, serve(t, mw, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, mw, &Principal{UserID: 5, Role: RolePartner}).Code)
	assert.Equal(t, http.StatusNoContent, serve(t, mw, &Principal{UserID: 6, Role: RoleManager}).Code)
	assert.Equal(t, http.StatusNoContent, serve(t, mw, &Principal{UserID: 7, Role: RoleSuperAdmin}).Code)
}
