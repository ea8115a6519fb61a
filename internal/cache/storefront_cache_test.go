package cache

import (
	"context"
	"testing"

	"github.com/tablecart/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	previousClient, previousPrefix, previousEnabled := redisClient, redisPrefix, redisEnabled
	redisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisPrefix = "test"
	redisEnabled = true
	t.Cleanup(func() {
		_ = redisClient.Close()
		redisClient, redisPrefix, redisEnabled = previousClient, previousPrefix, previousEnabled
	})
	return mr
}

func TestStorefrontCacheRoundTrip(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	state := BuildStorefrontState(&models.Storefront{ID: "sf-1", Slug: "Main", Name: "Main", Currency: "USD", IsActive: true})
	require.NoError(t, SetStorefront(ctx, state))
	assert.True(t, mr.Exists("test:storefront:slug:main"))

	got, hit, err := GetStorefront(ctx, "MAIN")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "sf-1", got.Model().ID)
	assert.Equal(t, "USD", got.Currency)

	require.NoError(t, DelStorefront(ctx, "main"))
	_, hit, err = GetStorefront(ctx, "main")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStorefrontCacheDisabled(t *testing.T) {
	previous := redisEnabled
	redisEnabled = false
	t.Cleanup(func() { redisEnabled = previous })

	_, hit, err := GetStorefront(context.Background(), "main")
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, SetStorefront(context.Background(), &StorefrontState{Slug: "main"}))
}
