package rbac

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permissionCaches(t *testing.T) map[string]PermissionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]PermissionCache{
		"memory": NewMemoryPermissionCache(),
		"redis":  NewRedisPermissionCache(client, "test-perm"),
	}
}

func TestPermissionCacheLifecycle(t *testing.T) {
	for name, cache := range permissionCaches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := cache.Get(ctx, 1)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, cache.Set(ctx, 1, []string{"clients.view", "pricing.view"}))
			require.NoError(t, cache.Set(ctx, 2, []string{}))

			perms, ok, err := cache.Get(ctx, 1)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []string{"clients.view", "pricing.view"}, perms)

			empty, ok, err := cache.Get(ctx, 2)
			require.NoError(t, err)
			assert.True(t, ok, "an empty permission set is still a cache hit")
			assert.Empty(t, empty)

			require.NoError(t, cache.Invalidate(ctx, 1))
			_, ok, err = cache.Get(ctx, 1)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, cache.InvalidateAll(ctx))
			_, ok, err = cache.Get(ctx, 2)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryPermissionCacheCopiesSlices(t *testing.T) {
	cache := NewMemoryPermissionCache()
	ctx := context.Background()
	perms := []string{"clients.view"}
	require.NoError(t, cache.Set(ctx, 9, perms))
	perms[0] = "roles.delete"

	got, _, err := cache.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"clients.view"}, got)
}

func TestRedisPermissionCacheHasNoExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewRedisPermissionCache(client, "")

	require.NoError(t, cache.Set(context.Background(), 5, []string{"clients.view"}))
	assert.True(t, mr.Exists("perm:5"))
	assert.Zero(t, mr.TTL("perm:5"))
}
