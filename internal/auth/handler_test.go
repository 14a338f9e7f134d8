package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/partnerhub/partner-crm/internal/auth"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
	_ "github.com/partnerhub/partner-crm/testing"
)

type stubRepo struct {
	users  map[int64]*auth.User
	logins int
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	s.logins++
	return nil
}

type roleStore map[rbac.Role][]string

func (s roleStore) PermissionsForRole(ctx context.Context, role rbac.Role) ([]string, error) {
	return s[role], nil
}

type fixture struct {
	router http.Handler
	now    time.Time
	repo   *stubRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		repo: &stubRepo{users: map[int64]*auth.User{
			1: {ID: 1, Email: "partner@example.com", Name: "Pat", PasswordHash: string(hash), Role: rbac.RolePartner, IsActive: true},
			2: {ID: 2, Email: "gone@example.com", PasswordHash: string(hash), Role: rbac.RoleClient, IsActive: false},
		}},
	}

	base, err := auth.NewTokenManager("test-secret-key-at-least-32-bytes-long", "partner-crm", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)
	tokens := base.WithClock(func() time.Time { return f.now })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	perms := rbac.NewService(roleStore{rbac.RolePartner: {"clients.view", "prospects.create"}}, nil, nil)
	svc := auth.NewService(f.repo, tokens, auth.NewRedisRefreshStore(client, ""), perms, nil)

	r := chi.NewRouter()
	r.Route("/auth", auth.NewHandler(nil, svc, tokens.Authenticate).MountRoutes)
	f.router = r
	return f
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr.Code, env
}

func (f *fixture) login(t *testing.T) auth.Session {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/auth/login", "", `{"email":"partner@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, status)
	var session auth.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session
}

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)
	session := f.login(t)
	assert.Equal(t, rbac.RolePartner, session.User.Role)
	assert.Equal(t, 1, f.repo.logins)

	status, env := f.do(t, http.MethodGet, "/auth/me", session.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, status)
	var profile auth.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, 2, profile.Level)
	assert.ElementsMatch(t, []string{"clients.view", "prospects.create"}, profile.Permissions)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/auth/login", "", `{"email":"partner@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Error)

	status, _ = f.do(t, http.MethodPost, "/auth/login", "", `{"email":"gone@example.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = f.do(t, http.MethodPost, "/auth/login", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	f := newFixture(t)
	status, env := f.do(t, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Authentication required", env.Error)
}

func TestAccessTokenExpiresAfterOneHour(t *testing.T) {
	f := newFixture(t)
	session := f.login(t)

	f.now = f.now.Add(3601 * time.Second)
	status, env := f.do(t, http.MethodGet, "/auth/me", session.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Token expired", env.Error)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)
}

func TestRefreshRotatesAndExpires(t *testing.T) {
	f := newFixture(t)
	session := f.login(t)
	body := `{"refresh_token":"` + session.Tokens.RefreshToken + `"}`

	f.now = f.now.Add(2 * time.Hour)
	status, env := f.do(t, http.MethodPost, "/auth/refresh", "", body)
	require.Equal(t, http.StatusOK, status)
	var rotated auth.Session
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEqual(t, session.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	status, _ = f.do(t, http.MethodPost, "/auth/refresh", "", body)
	assert.Equal(t, http.StatusUnauthorized, status, "a rotated refresh token cannot be replayed")

	f.now = f.now.Add(7*24*time.Hour + time.Second)
	status, env = f.do(t, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+rotated.Tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token expired", env.Error)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	session := f.login(t)

	status, _ := f.do(t, http.MethodPost, "/auth/logout", session.Tokens.AccessToken, `{"refresh_token":"`+session.Tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+session.Tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPermissionsRefresh(t *testing.T) {
	f := newFixture(t)
	session := f.login(t)

	status, env := f.do(t, http.MethodPost, "/auth/permissions/refresh", session.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"permissions":["clients.view","prospects.create"]}`, string(env.Data))
}
