package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCounter(t *testing.T) {
	mr, client := newRedis(t)
	c := NewRedisCounter(client, "rl")
	c.Config(10, time.Minute)

	now := time.Unix(1_700_000_040, 0).Truncate(time.Minute)
	prev := now.Add(-time.Minute)

	require.NoError(t, c.IncrementBy("user:1", prev, 4))
	require.NoError(t, c.Increment("user:1", now))
	require.NoError(t, c.Increment("user:1", now))

	curr, before, err := c.Get("user:1", now, prev)
	require.NoError(t, err)
	assert.Equal(t, 2, curr)
	assert.Equal(t, 4, before)

	curr, before, err = c.Get("user:2", now, prev)
	require.NoError(t, err)
	assert.Zero(t, curr)
	assert.Zero(t, before)

	assert.Equal(t, 3*time.Minute, mr.TTL(c.windowKey("user:1", now)))
}

func TestKeyFunc(t *testing.T) {
	identify := func(r *http.Request) (int64, bool) {
		if r.Header.Get("Authorization") == "Bearer ok" {
			return 42, true
		}
		return 0, false
	}
	key := KeyFunc(identify)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	got, err := key(req)
	require.NoError(t, err)
	assert.Equal(t, "ip:203.0.113.9", got)

	req.Header.Set("Authorization", "Bearer ok")
	got, err = key(req)
	require.NoError(t, err)
	assert.Equal(t, "user:42", got)
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestMemoryLimiterRendersEnvelope(t *testing.T) {
	mw, err := New(Options{Requests: 2, Window: time.Minute})
	require.NoError(t, err)
	h := mw(ok)

	assert.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1:1").Code)
	assert.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1:2").Code)
	rr := hit(h, "198.51.100.1:3")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"RATE_LIMITED"`)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, hit(h, "198.51.100.2:1").Code)
}

func TestRedisLimiterSharedAcrossInstances(t *testing.T) {
	_, client := newRedis(t)
	opts := Options{Requests: 3, Window: time.Minute, Store: StoreRedis, Redis: client}
	first, err := New(opts)
	require.NoError(t, err)
	second, err := New(opts)
	require.NoError(t, err)
	a, b := first(ok), second(ok)

	assert.Equal(t, http.StatusNoContent, hit(a, "192.0.2.7:1").Code)
	assert.Equal(t, http.StatusNoContent, hit(b, "192.0.2.7:1").Code)
	assert.Equal(t, http.StatusNoContent, hit(a, "192.0.2.7:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(b, "192.0.2.7:1").Code)
}

func TestNewRejectsBadStore(t *testing.T) {
	_, err := New(Options{Store: StoreRedis})
	assert.Error(t, err)
	_, err = New(Options{Store: "memcached"})
	assert.Error(t, err)
}
