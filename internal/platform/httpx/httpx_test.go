package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validation("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"token expired wins over unauthorized", Wrap(ErrTokenExpired, "Token expired", nil), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{"wrapped not found", fmt.Errorf("load role: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"method", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"conflict", Conflict("dup"), http.StatusConflict, "CONFLICT"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unavailable", Unavailable("Integration not configured"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorUnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("driver failure")
	err := Wrap(ErrUnavailable, "Service unavailable", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "driver failure")
}

func TestRespondErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/roles", nil)

	RespondError(rr, req, Unauthorized("Authentication required"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.False(t, env.Success)
	assert.Equal(t, "Authentication required", env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.NotEmpty(t, env.Timestamp)
	assert.Empty(t, env.Details)
}

func TestRespondErrorHidesInternalTextUnlessExposed(t *testing.T) {
	internal := errors.New("pq: relation does not exist")

	rr := httptest.NewRecorder()
	RespondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), internal)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Internal server error", env.Error)
	assert.Empty(t, env.Details)

	rr = httptest.NewRecorder()
	handler := ExposeErrorDetails(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, internal)
	}))
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	env = decodeEnvelope(t, rr)
	assert.Equal(t, internal.Error(), env.Details)
}

func TestLocalizePortuguese(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")
	assert.Equal(t, "Token expirado", Localize(req, "Token expired"))

	req.Header.Set("Accept-Language", "en-US")
	assert.Equal(t, "Token expired", Localize(req, "Token expired"))

	req.Header.Del("Accept-Language")
	assert.Equal(t, "Token expired", Localize(req, "Token expired"))
}

func TestSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Success(rr, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	var target struct{ Name string }
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	err := DecodeJSON(req, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"ok"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "ok", target.Name)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required"`
	}
	err := Validate(payload{Email: "not-an-email"})
	require.Error(t, err)
	status, code, msg := Classify(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", code)
	assert.Equal(t, "Invalid fields: email, name", msg)

	assert.NoError(t, Validate(payload{Email: "a@b.co", Name: "Ana"}))
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/clients?page=3&per_page=500", nil)
	p := ParsePage(req)
	assert.Equal(t, Page{Page: 3, PerPage: 100}, p)
	assert.Equal(t, 200, p.Offset())

	p = ParsePage(httptest.NewRequest(http.MethodGet, "/clients?page=-1&per_page=abc", nil))
	assert.Equal(t, Page{Page: 1, PerPage: 20}, p)

	assert.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 41, TotalPages: 3}, NewPagination(p, 41))

	p = ParsePage(httptest.NewRequest(http.MethodGet, "/users?page=9223372036854775807&per_page=20", nil))
	assert.Equal(t, maxPage, p.Page)
	assert.Positive(t, p.Offset())
	assert.Zero(t, Page{Page: math.MaxInt, PerPage: 0}.Offset())
	assert.GreaterOrEqual(t, Page{Page: math.MaxInt, PerPage: math.MaxInt}.Offset(), 0)
}
