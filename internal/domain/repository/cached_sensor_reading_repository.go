package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

const sensorCachePrefix = "sensor-readings:"

// latestNone marks a cached "no readings yet" answer for LatestByProduct.
const latestNone = "null"

// CacheCounters are incremented on every cache lookup. Either may be nil.
type CacheCounters struct {
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

type cachedSensorReadingRepository struct {
	next     SensorReadingRepository
	rdb      *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	counters CacheCounters
}

// NewCachedSensorReadingRepository wraps next with a Redis read-through cache.
// A nil client or a non-positive ttl returns next unchanged. Redis failures
// are logged and the read goes to next.
func NewCachedSensorReadingRepository(next SensorReadingRepository, rdb *redis.Client, ttl time.Duration, logger *slog.Logger, counters CacheCounters) SensorReadingRepository {
	if rdb == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cachedSensorReadingRepository{
		next:     next,
		rdb:      rdb,
		ttl:      ttl,
		logger:   logger,
		counters: counters,
	}
}

func (c *cachedSensorReadingRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]model.SensorReading, error) {
	key := sensorCachePrefix + "list:" + productID + ":" + strconv.Itoa(limit)

	if raw, ok := c.get(ctx, key); ok {
		var readings []model.SensorReading
		if err := json.Unmarshal(raw, &readings); err == nil {
			return readings, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable sensor cache entry", "key", key)
	}

	readings, err := c.next.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, readings)
	return readings, nil
}

func (c *cachedSensorReadingRepository) LatestByProduct(ctx context.Context, productID string) (*model.SensorReading, error) {
	key := sensorCachePrefix + "latest:" + productID

	if raw, ok := c.get(ctx, key); ok {
		if string(raw) == latestNone {
			return nil, nil
		}
		var reading model.SensorReading
		if err := json.Unmarshal(raw, &reading); err == nil {
			return &reading, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable sensor cache entry", "key", key)
	}

	reading, err := c.next.LatestByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, reading)
	return reading, nil
}

func (c *cachedSensorReadingRepository) get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.count(c.counters.Hits)
		return raw, true
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "sensor cache read failed", "key", key, "error", err)
	}
	c.count(c.counters.Misses)
	return nil, false
}

func (c *cachedSensorReadingRepository) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "sensor cache encode failed", "key", key, "error", fmt.Errorf("json: %w", err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "sensor cache write failed", "key", key, "error", err)
	}
}

func (c *cachedSensorReadingRepository) count(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}
