package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

type memoryRepo struct {
	plans   []Plan
	updates []*db.Updates
}

func (m *memoryRepo) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	return append([]Plan{}, m.plans...), nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (*Plan, error) {
	for _, p := range m.plans {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) Create(ctx context.Context, p Plan) (*Plan, error) {
	p.ID = int64(len(m.plans) + 1)
	p.IsActive = true
	m.plans = append(m.plans, p)
	return &p, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, updates *db.Updates) (*Plan, error) {
	m.updates = append(m.updates, updates)
	return m.Get(ctx, id)
}

func TestCreateNormalizesCurrency(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	plan, err := svc.Create(ctx, CreatePlanRequest{Name: "Starter", AmountCents: 4990})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, plan.Currency)

	plan, err = svc.Create(ctx, CreatePlanRequest{Name: "Pro", AmountCents: 9990, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", plan.Currency)

	_, err = svc.Create(ctx, CreatePlanRequest{Name: "Bad", Currency: "XYZ"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, CreatePlanRequest{Name: "Negative", AmountCents: -1})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateBuildsPatch(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	plan, err := svc.Create(ctx, CreatePlanRequest{Name: "Starter"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, plan.ID, UpdatePlanRequest{})
	require.NoError(t, err)
	assert.Empty(t, repo.updates)

	amount := int64(5990)
	eur := "eur"
	_, err = svc.Update(ctx, plan.ID, UpdatePlanRequest{AmountCents: &amount, Currency: &eur})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	_, args := repo.updates[0].Statement("price_plans", plan.ID)
	assert.Equal(t, []any{int64(5990), "EUR", plan.ID}, args)

	blank := " "
	_, err = svc.Update(ctx, plan.ID, UpdatePlanRequest{Name: &blank})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

type grants []string

func (g grants) EffectivePermissions(context.Context, rbac.Principal) ([]string, error) {
	return g, nil
}

func TestPricingEditRequiresPermission(t *testing.T) {
	svc := NewService(&memoryRepo{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := rbac.Principal{UserID: 7, Role: rbac.RoleClient}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/pricing", NewHandler(nil, svc, rbac.Middleware{Service: grants{"pricing.view"}}).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pricing", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pricing", strings.NewReader(`{"name":"Pro"}`)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
