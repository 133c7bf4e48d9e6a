package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
)

func newCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAvailabilityCache(client, time.Minute, zap.NewNop()), mr
}

func key(workerID uint, date, variant string) Key {
	return Key{ShopID: 3, WorkerID: workerID, Date: date, Variant: variant}
}

// fill stores slots the way a reader does: read, miss, store.
func fill(t *testing.T, c AvailabilityCache, k Key, slots []domain.TimeSlot) {
	t.Helper()
	ctx := context.Background()
	_, v, ok := c.Get(ctx, k)
	require.False(t, ok)
	c.Set(ctx, k, v, slots)
}

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	k := key(7, "2026-10-14", "s1")

	slots := []domain.TimeSlot{{Start: "09:00", End: "09:30"}}
	fill(t, c, k, slots)

	got, _, ok := c.Get(ctx, k)
	require.True(t, ok)
	assert.Equal(t, slots, got)

	_, _, ok = c.Get(ctx, key(7, "2026-10-14", "s2"))
	assert.False(t, ok, "variants are independent")

	c.Invalidate(ctx, 7, "2026-10-15")
	_, _, ok = c.Get(ctx, k)
	assert.True(t, ok, "other days are untouched")

	c.Invalidate(ctx, 7, "2026-10-14")
	_, _, ok = c.Get(ctx, k)
	assert.False(t, ok)
}

func TestCacheDropsListsComputedBeforeInvalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	k := key(7, "2026-10-14", "s1")

	_, v, ok := c.Get(ctx, k)
	require.False(t, ok)

	// A booking commits while the reader is still computing.
	c.Invalidate(ctx, 7, "2026-10-14")
	c.Set(ctx, k, v, []domain.TimeSlot{{Start: "10:00", End: "10:30"}})

	_, _, ok = c.Get(ctx, k)
	assert.False(t, ok)
}

func TestCacheShopInvalidateCoversAllWorkersAndDays(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	a := key(7, "2026-10-14", "s1")
	b := key(8, "2026-10-15", "s1")
	other := Key{ShopID: 4, WorkerID: 9, Date: "2026-10-14", Variant: "s1"}

	slots := []domain.TimeSlot{{Start: "09:00", End: "09:30"}}
	fill(t, c, a, slots)
	fill(t, c, b, slots)
	fill(t, c, other, slots)

	c.InvalidateShop(ctx, 3)

	_, _, ok := c.Get(ctx, a)
	assert.False(t, ok)
	_, _, ok = c.Get(ctx, b)
	assert.False(t, ok)
	_, _, ok = c.Get(ctx, other)
	assert.True(t, ok, "other shops keep their entries")
}

func TestCacheSeparatesShops(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	fill(t, c, Key{ShopID: 3, WorkerID: 7, Date: "2026-10-14", Variant: "s1"}, []domain.TimeSlot{})

	_, _, ok := c.Get(ctx, Key{ShopID: 4, WorkerID: 7, Date: "2026-10-14", Variant: "s1"})
	assert.False(t, ok)
}

func TestCacheKeepsEmptyLists(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	k := key(1, "2026-10-18", "s1")

	fill(t, c, k, []domain.TimeSlot{})
	got, _, ok := c.Get(ctx, k)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestCacheExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	k := key(1, "2026-10-14", "s1")

	fill(t, c, k, []domain.TimeSlot{{Start: "09:00", End: "09:30"}})
	mr.FastForward(2 * time.Minute)

	_, _, ok := c.Get(ctx, k)
	assert.False(t, ok)
}

func TestCacheDegradesWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisAvailabilityCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()
	k := key(1, "2026-10-14", "s1")

	mr.Close()

	_, v, ok := c.Get(ctx, k)
	assert.False(t, ok)
	c.Set(ctx, k, v, []domain.TimeSlot{{Start: "09:00", End: "09:30"}})
	c.Invalidate(ctx, 1, "2026-10-14")
	c.InvalidateShop(ctx, 3)
	_, _, ok = c.Get(ctx, k)
	assert.False(t, ok)
}
