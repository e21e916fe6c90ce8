//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modsieve/internal/cache"
	"modsieve/pkg/platform/sentinel"
	"modsieve/pkg/testutil/containers"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	c := cache.NewRedis(rc.Client)

	t.Run("missing key maps to the not-found sentinel", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		_, err := c.Get(ctx, cache.Key("gopher", "fp", "golang"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("set then get round trip", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		key := cache.Key("gopher", "fp", "golang")
		require.NoError(t, c.Set(ctx, key, []byte(`{"triggered":true}`), time.Minute))

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"triggered":true}`, string(got))
	})

	t.Run("entries expire with their TTL", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		key := cache.Key("gopher", "fp", "golang")
		require.NoError(t, c.Set(ctx, key, []byte("x"), 100*time.Millisecond))

		_, err := c.Get(ctx, key)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			_, err := c.Get(ctx, key)
			return err != nil
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("zero TTL never expires", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		key := cache.Key("gopher", "fp", "golang")
		require.NoError(t, c.Set(ctx, key, []byte("x"), 0))

		ttl, err := rc.Client.TTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(-1), ttl)
	})
}
