package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

type stubRepo struct {
	users     []User
	roles     map[rbac.Role]bool
	rolePerms map[rbac.Role][]string
	hashes    map[string]string
}

func newStubRepo() *stubRepo {
	repo := &stubRepo{
		roles: map[rbac.Role]bool{"auditor": true, "reviewer": true},
		rolePerms: map[rbac.Role][]string{
			"auditor":  {"audit.view", "roles.edit"},
			"reviewer": {"clients.view", "prospects.view"},
		},
		hashes: map[string]string{},
	}
	for _, r := range rbac.BuiltinRoles() {
		repo.roles[r] = true
		repo.rolePerms[r] = rbac.Strings(rbac.DefaultPermissions(r))
	}
	for i, r := range []rbac.Role{rbac.RoleSuperAdmin, rbac.RoleAdministrator, rbac.RoleManager, rbac.RolePartner, rbac.RolePartner, rbac.RoleClient, "auditor"} {
		repo.users = append(repo.users, User{ID: int64(i + 1), Email: string(r) + "@example.com", Role: r, IsActive: true})
	}
	return repo
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]User, error) { return s.users, nil }

func (s *stubRepo) CreateUser(ctx context.Context, u User, hash string) (User, error) {
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return User{}, httpx.Wrap(httpx.ErrDuplicate, "Resource already exists", nil)
		}
	}
	u.ID = int64(len(s.users) + 1)
	u.IsActive = true
	s.users = append(s.users, u)
	s.hashes[u.Email] = hash
	return u, nil
}

func (s *stubRepo) RoleExists(ctx context.Context, name rbac.Role) (bool, error) {
	return s.roles[name], nil
}

func (s *stubRepo) RolePermissions(ctx context.Context, name rbac.Role) ([]string, error) {
	if !s.roles[name] {
		return nil, httpx.ErrNotFound
	}
	return s.rolePerms[name], nil
}

// rolePermissions grants each principal the default set of its built-in role.
type rolePermissions struct{}

func (rolePermissions) EffectivePermissions(_ context.Context, p rbac.Principal) ([]string, error) {
	if p.Role == rbac.RoleSuperAdmin {
		return rbac.Strings(rbac.AllPermissions()), nil
	}
	return rbac.Strings(rbac.DefaultPermissions(p.Role)), nil
}

type memoryAudit struct{ entries []audit.Entry }

func (a *memoryAudit) Record(ctx context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func newTestService() (*Service, *stubRepo, *memoryAudit) {
	repo := newStubRepo()
	rec := &memoryAudit{}
	svc := NewService(repo, rolePermissions{}, rec, nil)
	svc.hashCost = bcrypt.MinCost
	return svc, repo, rec
}

func TestListUsersFiltersByVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	partnerView, err := svc.ListUsers(ctx, rbac.Principal{UserID: 4, Role: rbac.RolePartner})
	require.NoError(t, err)
	require.Len(t, partnerView, 2)
	for _, u := range partnerView {
		assert.Equal(t, rbac.RolePartner, u.Role)
	}

	managerView, err := svc.ListUsers(ctx, rbac.Principal{UserID: 3, Role: rbac.RoleManager})
	require.NoError(t, err)
	assert.Len(t, managerView, 4)

	superView, err := svc.ListUsers(ctx, rbac.Principal{UserID: 1, Role: rbac.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Len(t, superView, 7)
}

func TestCreateUserEnforcesCreationPolicy(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()
	manager := rbac.Principal{UserID: 3, Role: rbac.RoleManager}

	_, err := svc.CreateUser(ctx, manager, CreateInput{Email: "boss@example.com", Name: "Boss", Password: "longenough", Role: "Administrator"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	u, err := svc.CreateUser(ctx, manager, CreateInput{Email: "peer@example.com", Name: "Peer", Password: "longenough", Role: "MANAGER"})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes["peer@example.com"]), []byte("longenough")))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "user.create", rec.entries[0].Action)

	_, err = svc.CreateUser(ctx, rbac.Principal{UserID: 9, Role: "auditor"}, CreateInput{Email: "x@example.com", Name: "X", Password: "longenough", Role: "client"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCreateUserCustomRoleCannotExceedActorPermissions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	manager := rbac.Principal{UserID: 3, Role: rbac.RoleManager}
	partner := rbac.Principal{UserID: 4, Role: rbac.RolePartner}

	_, err := svc.CreateUser(ctx, manager, CreateInput{Email: "aud@example.com", Name: "Aud", Password: "longenough", Role: "auditor"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = svc.CreateUser(ctx, partner, CreateInput{Email: "aud2@example.com", Name: "Aud", Password: "longenough", Role: "auditor"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	u, err := svc.CreateUser(ctx, manager, CreateInput{Email: "rev@example.com", Name: "Rev", Password: "longenough", Role: "reviewer"})
	require.NoError(t, err)
	assert.Equal(t, rbac.Role("reviewer"), u.Role)

	u, err = svc.CreateUser(ctx, rbac.Principal{UserID: 1, Role: rbac.RoleSuperAdmin}, CreateInput{Email: "aud3@example.com", Name: "Aud", Password: "longenough", Role: "auditor"})
	require.NoError(t, err)
	assert.Equal(t, rbac.Role("auditor"), u.Role)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	admin := rbac.Principal{UserID: 2, Role: rbac.RoleAdministrator}

	_, err := svc.CreateUser(ctx, admin, CreateInput{Email: "bad", Name: "N", Password: "short", Role: "client"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateUser(ctx, admin, CreateInput{Email: "n@example.com", Name: "N", Password: "longenough", Role: "wizard"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateUser(ctx, admin, CreateInput{Email: "PARTNER@example.com", Name: "Dup", Password: "longenough", Role: "partner"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	_, _, msg := httpx.Classify(err)
	assert.Equal(t, "Email already registered", msg)
}

type grantAll struct{}

func (grantAll) EffectivePermissions(context.Context, rbac.Principal) ([]string, error) {
	return rbac.Strings(rbac.AllPermissions()), nil
}

func TestListUsersHandlerPaginates(t *testing.T) {
	svc, _, _ := newTestService()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := rbac.Principal{UserID: 1, Role: rbac.RoleSuperAdmin}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/users", NewHandler(nil, svc, rbac.Middleware{Service: grantAll{}}).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users?page=2&per_page=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data []User           `json:"data"`
		Meta httpx.Pagination `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Len(t, env.Data, 2)
	assert.Equal(t, httpx.Pagination{Page: 2, PerPage: 5, Total: 7, TotalPages: 2}, env.Meta)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users?page=9223372036854775807&per_page=20", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Empty(t, env.Data)
}
