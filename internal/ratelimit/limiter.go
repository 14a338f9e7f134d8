package ratelimit

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

// Counter stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// IdentifyFunc returns the authenticated user id carried by r, if any.
type IdentifyFunc func(r *http.Request) (int64, bool)

type Options struct {
	Requests int
	Window   time.Duration
	Store    string
	Redis    redis.UniversalClient
	Identify IdentifyFunc
	Logger   *slog.Logger
}

// New builds the limiter middleware. The memory store counts per process only,
// so with several instances each one grants the full budget.
func New(opts Options) (func(http.Handler) http.Handler, error) {
	if opts.Requests <= 0 {
		opts.Requests = 100
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	options := []httprate.Option{
		httprate.WithKeyFuncs(KeyFunc(opts.Identify)),
		httprate.WithLimitHandler(LimitHandler(opts.Window)),
	}
	switch opts.Store {
	case "", StoreMemory:
		logger.Warn("rate limit counters are per-process; limits are advisory when running more than one instance",
			slog.Int("requests", opts.Requests), slog.Duration("window", opts.Window))
	case StoreRedis:
		if opts.Redis == nil {
			return nil, errors.New("ratelimit: redis store requires a client")
		}
		options = append(options, httprate.WithLimitCounter(NewRedisCounter(opts.Redis, "ratelimit")))
		logger.Info("rate limit counters shared through redis",
			slog.Int("requests", opts.Requests), slog.Duration("window", opts.Window))
	default:
		return nil, errors.New("ratelimit: unknown store " + strconv.Quote(opts.Store))
	}
	return httprate.Limit(opts.Requests, opts.Window, options...), nil
}

// KeyFunc keys requests by "user:<id>" when identify recognises a token and by
// "ip:<addr>" otherwise.
func KeyFunc(identify IdentifyFunc) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		if identify != nil {
			if id, ok := identify(r); ok {
				return "user:" + strconv.FormatInt(id, 10), nil
			}
		}
		ip, err := httprate.KeyByIP(r)
		if err != nil {
			return "", err
		}
		return "ip:" + ip, nil
	}
}

// LimitHandler renders 429 in the JSON envelope.
func LimitHandler(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))
	return func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Retry-After") == "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		httpx.RespondError(w, r, httpx.ErrRateLimited)
	}
}
