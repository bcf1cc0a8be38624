package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
)

const defaultCacheTTL = 5 * time.Minute

// AlertCache is the Redis-backed read cache for alert queries. Single
// alerts are keyed alert:<id>; aggregate lists use the keys the alert
// service passes in (alerts:all, alerts:status:<s>, alerts:sensor:<id>).
//
// Every operation is best-effort: Redis failures are logged and reported as
// misses, never surfaced to callers.
type AlertCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewAlertCache creates an AlertCache wrapping the given Redis client.
func NewAlertCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *AlertCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AlertCache{client: client, ttl: ttl, log: log}
}

func alertKey(id string) string { return "alert:" + id }

func (c *AlertCache) GetAlert(ctx context.Context, id string) (*domain.Alert, bool) {
	data, err := c.client.Get(ctx, alertKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", alertKey(id)).Msg("cache get failed")
		}
		return nil, false
	}

	var alert domain.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		c.log.Warn().Err(err).Str("key", alertKey(id)).Msg("cache entry corrupt, dropping")
		_ = c.client.Del(ctx, alertKey(id)).Err()
		return nil, false
	}
	return &alert, true
}

func (c *AlertCache) SetAlert(ctx context.Context, a *domain.Alert) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, alertKey(a.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", alertKey(a.ID)).Msg("cache set failed")
	}
}

func (c *AlertCache) GetAlerts(ctx context.Context, key string) ([]*domain.Alert, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return alerts, true
}

func (c *AlertCache) SetAlerts(ctx context.Context, key string, alerts []*domain.Alert) {
	data, err := json.Marshal(alerts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (c *AlertCache) InvalidateAlert(ctx context.Context, id string) {
	if err := c.client.Del(ctx, alertKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", alertKey(id)).Msg("cache invalidate failed")
	}
}

func (c *AlertCache) InvalidateLists(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}
