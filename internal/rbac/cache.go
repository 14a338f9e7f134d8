package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// PermissionCache stores effective permissions per user. Entries never
// expire; callers invalidate them explicitly on logout, refresh or role
// changes.
type PermissionCache interface {
	Get(ctx context.Context, userID int64) ([]string, bool, error)
	Set(ctx context.Context, userID int64, perms []string) error
	Invalidate(ctx context.Context, userID int64) error
	InvalidateAll(ctx context.Context) error
}

// MemoryPermissionCache keeps permissions in process memory. It is only
// correct for single-instance deployments.
type MemoryPermissionCache struct {
	store *gocache.Cache
}

// NewMemoryPermissionCache constructs an in-process cache.
func NewMemoryPermissionCache() *MemoryPermissionCache {
	return &MemoryPermissionCache{store: gocache.New(gocache.NoExpiration, 0)}
}

func (c *MemoryPermissionCache) Get(_ context.Context, userID int64) ([]string, bool, error) {
	v, ok := c.store.Get(memoryKey(userID))
	if !ok {
		return nil, false, nil
	}
	perms, ok := v.([]string)
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out, true, nil
}

func (c *MemoryPermissionCache) Set(_ context.Context, userID int64, perms []string) error {
	stored := make([]string, len(perms))
	copy(stored, perms)
	c.store.Set(memoryKey(userID), stored, gocache.NoExpiration)
	return nil
}

func (c *MemoryPermissionCache) Invalidate(_ context.Context, userID int64) error {
	c.store.Delete(memoryKey(userID))
	return nil
}

func (c *MemoryPermissionCache) InvalidateAll(context.Context) error {
	c.store.Flush()
	return nil
}

func memoryKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// RedisPermissionCache shares permissions across instances through Redis.
type RedisPermissionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisPermissionCache constructs a Redis-backed cache using keys "<prefix>:<userID>".
func NewRedisPermissionCache(client *redis.Client, prefix string) *RedisPermissionCache {
	if prefix == "" {
		prefix = "perm"
	}
	return &RedisPermissionCache{client: client, prefix: prefix}
}

func (c *RedisPermissionCache) Get(ctx context.Context, userID int64) ([]string, bool, error) {
	payload, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("rbac: permission cache get: %w", err)
	}
	var perms []string
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false, fmt.Errorf("rbac: permission cache decode: %w", err)
	}
	return perms, true, nil
}

func (c *RedisPermissionCache) Set(ctx context.Context, userID int64, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("rbac: permission cache set: %w", err)
	}
	return nil
}

func (c *RedisPermissionCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("rbac: permission cache delete: %w", err)
	}
	return nil
}

func (c *RedisPermissionCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("rbac: permission cache flush: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rbac: permission cache scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("rbac: permission cache flush: %w", err)
		}
	}
	return nil
}

func (c *RedisPermissionCache) key(userID int64) string {
	return c.prefix + ":" + strconv.FormatInt(userID, 10)
}

var (
	_ PermissionCache = (*MemoryPermissionCache)(nil)
	_ PermissionCache = (*RedisPermissionCache)(nil)
)
