// Package ratelimit throttles API requests per principal with go-chi/httprate.
// Counters live in process memory by default or in redis when they must be
// shared between instances.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

var _ httprate.LimitCounter = (*RedisCounter)(nil)

// RedisCounter implements httprate.LimitCounter on redis. Each window is one
// integer key expiring after three window lengths, long enough for the
// sliding estimate to read the previous window.
type RedisCounter struct {
	client       redis.UniversalClient
	prefix       string
	windowLength time.Duration
	timeout      time.Duration
}

// NewRedisCounter returns a counter storing keys under prefix.
func NewRedisCounter(client redis.UniversalClient, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisCounter{client: client, prefix: prefix, windowLength: time.Minute, timeout: 100 * time.Millisecond}
}

func (c *RedisCounter) Config(requestLimit int, windowLength time.Duration) {
	c.windowLength = windowLength
}

func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	k := c.windowKey(key, currentWindow)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, k, int64(amount))
	pipe.Expire(ctx, k, c.windowLength*3)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ratelimit: increment %s: %w", k, err)
	}
	return nil
}

func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	values, err := c.client.MGet(ctx, c.windowKey(key, currentWindow), c.windowKey(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: get %s: %w", key, err)
	}
	counts := [2]int{}
	for i, v := range values {
		if i >= len(counts) || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("ratelimit: parse %s: %w", key, err)
		}
		counts[i] = n
	}
	return counts[0], counts[1], nil
}

func (c *RedisCounter) windowKey(key string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, window.Unix())
}
