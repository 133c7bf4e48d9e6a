package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
)

// Key names one cached slot list.
type Key struct {
	ShopID   uint
	WorkerID uint
	Date     string
	Variant  string
}

// Version is the generation a lookup saw. Set stores under it, so a list
// computed before an invalidation lands on a key no reader asks for.
type Version struct {
	shop  int64
	day   int64
	valid bool
}

// AvailabilityCache keeps computed slot lists per shop, worker and
// shop-local day. Entries are never edited; a booking write bumps the day's
// version and a schedule change bumps the shop's, so every older entry
// stops being read and expires on its own.
type AvailabilityCache interface {
	Get(ctx context.Context, k Key) ([]domain.TimeSlot, Version, bool)
	Set(ctx context.Context, k Key, v Version, slots []domain.TimeSlot)
	Invalidate(ctx context.Context, workerID uint, date string)
	InvalidateShop(ctx context.Context, shopID uint)
}

type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl, log: log}
}

func dayVersionKey(workerID uint, date string) string {
	return fmt.Sprintf("availability:v:%d:%s", workerID, date)
}

func shopVersionKey(shopID uint) string {
	return fmt.Sprintf("availability:shop:v:%d", shopID)
}

func slotsKey(k Key, v Version) string {
	return fmt.Sprintf("availability:slots:%d:%d:%s:%d.%d:%s",
		k.ShopID, k.WorkerID, k.Date, v.shop, v.day, k.Variant)
}

func (c *RedisAvailabilityCache) version(ctx context.Context, k Key) (Version, error) {
	vals, err := c.client.MGet(ctx, shopVersionKey(k.ShopID), dayVersionKey(k.WorkerID, k.Date)).Result()
	if err != nil {
		return Version{}, err
	}

	var n [2]int64
	for i, raw := range vals {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if n[i], err = strconv.ParseInt(s, 10, 64); err != nil {
			return Version{}, err
		}
	}
	return Version{shop: n[0], day: n[1], valid: true}, nil
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, k Key) ([]domain.TimeSlot, Version, bool) {
	v, err := c.version(ctx, k)
	if err != nil {
		c.log.Warn("availability cache version read failed", zap.Error(err))
		return nil, Version{}, false
	}

	raw, err := c.client.Get(ctx, slotsKey(k, v)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("availability cache read failed", zap.Error(err))
		}
		return nil, v, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, v, false
	}
	return slots, v, true
}

// Set stores slots under v, the version returned by the Get that missed.
func (c *RedisAvailabilityCache) Set(ctx context.Context, k Key, v Version, slots []domain.TimeSlot) {
	if !v.valid {
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, slotsKey(k, v), data, c.ttl).Err(); err != nil {
		c.log.Warn("availability cache write failed", zap.Error(err))
	}
}

func (c *RedisAvailabilityCache) bump(ctx context.Context, key string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 7*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, workerID uint, date string) {
	if err := c.bump(ctx, dayVersionKey(workerID, date)); err != nil {
		c.log.Warn("availability cache invalidate failed",
			zap.Uint("worker_id", workerID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}

// InvalidateShop drops every cached list of the shop, for changes that are
// not tied to one day such as weekly hours or staffing.
func (c *RedisAvailabilityCache) InvalidateShop(ctx context.Context, shopID uint) {
	if err := c.bump(ctx, shopVersionKey(shopID)); err != nil {
		c.log.Warn("availability cache shop invalidate failed",
			zap.Uint("shop_id", shopID),
			zap.Error(err),
		)
	}
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, Key) ([]domain.TimeSlot, Version, bool) {
	return nil, Version{}, false
}
func (Noop) Set(context.Context, Key, Version, []domain.TimeSlot) {}
func (Noop) Invalidate(context.Context, uint, string)             {}
func (Noop) InvalidateShop(context.Context, uint)                 {}

var (
	_ AvailabilityCache = (*RedisAvailabilityCache)(nil)
	_ AvailabilityCache = Noop{}
)
