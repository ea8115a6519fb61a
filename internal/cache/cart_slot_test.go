package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartSlot(t *testing.T, options CartSlotOptions) (*CartSlot, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartSlot(client, options), mr
}

func TestCartSlotSaveLoadDelete(t *testing.T) {
	slot, mr := setupCartSlot(t, CartSlotOptions{Prefix: "test", TTL: time.Hour})
	ctx := context.Background()

	_, ok, err := slot.Load(ctx, "cart:main:v2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, slot.Save(ctx, "cart:main:v2", []byte(`{"items":[]}`)))
	assert.True(t, mr.Exists("test:cart:main:v2"))

	value, ok, err := slot.Load(ctx, "cart:main:v2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(value))

	require.NoError(t, slot.Delete(ctx, "cart:main:v2"))
	assert.False(t, mr.Exists("test:cart:main:v2"))
}

func TestCartSlotEmptyValueIsAHit(t *testing.T) {
	slot, mr := setupCartSlot(t, CartSlotOptions{Prefix: "test"})
	require.NoError(t, mr.Set("test:cart:empty:v2", ""))

	_, ok, err := slot.Load(context.Background(), "cart:empty:v2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCartSlotTTL(t *testing.T) {
	slot, mr := setupCartSlot(t, CartSlotOptions{Prefix: "test", TTL: 10 * time.Minute})
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, "cart:main:v2", []byte(`{}`)))
	assert.Equal(t, 10*time.Minute, mr.TTL("test:cart:main:v2"))

	mr.FastForward(11 * time.Minute)
	_, ok, err := slot.Load(ctx, "cart:main:v2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCartSlotBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	slot, mr := setupCartSlot(t, CartSlotOptions{Prefix: "test", FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()
	mr.Close()

	for i := 0; i < 2; i++ {
		err := slot.Save(ctx, "cart:main:v2", []byte(`{}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSlotUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, slot.State())

	_, _, err := slot.Load(ctx, "cart:main:v2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}
