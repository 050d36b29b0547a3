// Package cache stores JSON payloads in Redis with a fixed TTL.
// A nil client turns every lookup into a miss and every write into a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anisjkb/deed/internal/obs"
)

// Cache wraps Redis helpers for JSON payloads under one namespace.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	name   string
}

// New constructs a cache. name labels metrics and prefixes keys.
func New(client redis.Cmdable, name string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, name: name}
}

// Key joins the cache namespace and parts with colons.
func (c *Cache) Key(parts ...string) string {
	key := c.name
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			obs.ObserveCacheLookup(c.name, false)
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	obs.ObserveCacheLookup(c.name, true)
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete drops the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
