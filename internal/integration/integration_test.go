package integration

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

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

func TestUnconfiguredClientsReportUnavailable(t *testing.T) {
	ctx := context.Background()
	_, err := NewHubSpot(HubSpotConfig{}, nil).CreateContact(ctx, Contact{Email: "a@b.co"})
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
	_, err = NewGemini(GeminiConfig{}, nil).GenerateText(ctx, "hi")
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
	_, err = NewResend(ResendConfig{APIKey: "k"}, nil).Send(ctx, Email{To: []string{"a@b.co"}, Subject: "s"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHubSpotCreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "Bearer pat-123", r.Header.Get("Authorization"))
		var body struct {
			Properties Contact `json:"properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lead@acme.io", body.Properties.Email)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"901"}`))
	}))
	defer srv.Close()

	hs := NewHubSpot(HubSpotConfig{Token: "pat-123", BaseURL: srv.URL}, srv.Client())
	id, err := hs.CreateContact(context.Background(), Contact{Email: "lead@acme.io", Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "901", id)
}

func TestGeminiGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Goog-Api-Key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Warm lead. "},{"text":"Call Monday."}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "key", Model: "gemini-test", BaseURL: srv.URL}, srv.Client())
	out, err := g.GenerateText(context.Background(), "summarise")
	require.NoError(t, err)
	assert.Equal(t, "Warm lead. Call Monday.", out)
}

func TestResendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "crm@partnerhub.io", body["from"])
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer srv.Close()

	rs := NewResend(ResendConfig{APIKey: "re_1", From: "crm@partnerhub.io", BaseURL: srv.URL}, srv.Client())
	_, err := rs.Send(context.Background(), Email{To: []string{"x"}, Subject: "Hello", Text: "hi"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Contains(t, upstream.Body, "invalid to")
}

type grants []string

func (g grants) EffectivePermissions(context.Context, rbac.Principal) ([]string, error) {
	return g, nil
}

func TestHandlerReturns503WhenUnconfigured(t *testing.T) {
	h := NewHandler(nil, NewHubSpot(HubSpotConfig{}, nil), NewGemini(GeminiConfig{}, nil),
		rbac.Middleware{Service: grants{"integrations.hubspot", "integrations.ai"}})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := rbac.Principal{UserID: 1, Role: rbac.RoleAdmin}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/integrations", h.MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/integrations/hubspot/contacts", strings.NewReader(`{"email":"a@b.co"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"SERVICE_UNAVAILABLE"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/integrations/ai/prospect-summary", strings.NewReader(`{"name":"Acme"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/integrations/status", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"hubspot":false`)
}

type fakeAI struct{ prompt string }

func (f *fakeAI) Configured() bool { return true }

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "Good fit.", nil
}

func TestProspectSummaryBuildsPrompt(t *testing.T) {
	ai := &fakeAI{}
	h := NewHandler(nil, nil, ai, rbac.Middleware{Service: grants{"integrations.ai"}})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := rbac.Principal{UserID: 2, Role: rbac.RoleManager}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/integrations", h.MountRoutes)

	rr := httptest.NewRecorder()
	body := `{"name":"Jane","company":"Acme","notes":"Wants 40 seats"}`
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/integrations/ai/prospect-summary", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Good fit.")
	assert.Contains(t, ai.prompt, "Company: Acme")
	assert.NotContains(t, ai.prompt, "Email:")
}
