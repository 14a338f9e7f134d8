package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

// RefreshStore tracks refresh token ids that are still redeemable.
type RefreshStore interface {
	Register(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	Consume(ctx context.Context, jti string, userID int64) error
	Revoke(ctx context.Context, jti string) error
}

// RedisRefreshStore keeps live refresh token ids in Redis with the token's
// remaining lifetime as TTL.
type RedisRefreshStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRefreshStore constructs the store using keys "<prefix>:<jti>".
func NewRedisRefreshStore(client *redis.Client, prefix string) *RedisRefreshStore {
	if prefix == "" {
		prefix = "refresh"
	}
	return &RedisRefreshStore{client: client, prefix: prefix}
}

// Register records jti as redeemable by userID for ttl.
func (s *RedisRefreshStore) Register(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	if jti == "" {
		return errors.New("auth: refresh jti required")
	}
	if ttl <= 0 {
		return errors.New("auth: refresh ttl must be positive")
	}
	if err := s.client.Set(ctx, s.key(jti), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("auth: register refresh token: %w", err)
	}
	return nil
}

// Consume redeems jti exactly once. A missing, reused or foreign jti yields
// an unauthorized error.
func (s *RedisRefreshStore) Consume(ctx context.Context, jti string, userID int64) error {
	owner, err := s.client.GetDel(ctx, s.key(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return httpx.Unauthorized("Invalid token")
		}
		return fmt.Errorf("auth: consume refresh token: %w", err)
	}
	if owner != strconv.FormatInt(userID, 10) {
		return httpx.Unauthorized("Invalid token")
	}
	return nil
}

// Revoke forgets jti. Revoking an unknown id is not an error.
func (s *RedisRefreshStore) Revoke(ctx context.Context, jti string) error {
	if err := s.client.Del(ctx, s.key(jti)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) key(jti string) string {
	return s.prefix + ":" + jti
}

var _ RefreshStore = (*RedisRefreshStore)(nil)
