package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func chain(cfg MiddlewareConfig, h http.Handler) http.Handler {
	mws := MiddlewareStack(cfg)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestProductionRedirectsPlainHTTPWithoutEnvelope(t *testing.T) {
	reached := false
	h := chain(MiddlewareConfig{Config: &Config{AppEnv: "production"}}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://api.example.com/clients", nil))

	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "https://api.example.com/clients", rr.Header().Get("Location"))
	assert.NotContains(t, rr.Body.String(), `"success"`)
	assert.False(t, reached)
}

func TestForwardedHTTPSPassesWithSecurityHeaders(t *testing.T) {
	h := chain(MiddlewareConfig{Config: &Config{AppEnv: "production"}}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/clients", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}
