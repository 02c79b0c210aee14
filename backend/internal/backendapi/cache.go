package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"schedule_web/backend/internal/entity"
)

const lookupKeyPrefix = "schedule_web:lookup:"

func lookupKey(key string) string {
	return lookupKeyPrefix + key
}

// LookupCache keeps resolved select options in Redis for a short TTL. A nil
// cache, or one without a Redis client, caches nothing.
type LookupCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewLookupCache wraps a Redis client; client may be nil.
func NewLookupCache(client *redis.Client, ttl time.Duration) *LookupCache {
	return &LookupCache{redis: client, ttl: ttl}
}

// Get returns cached options. Misses and Redis errors both report hit=false.
func (c *LookupCache) Get(ctx context.Context, key string) ([]entity.Option, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, lookupKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("WARN: lookup cache read %s: %v", key, err)
		return nil, false
	}
	var opts []entity.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, false
	}
	return opts, true
}

// Set stores options; failures are logged and otherwise ignored.
func (c *LookupCache) Set(ctx context.Context, key string, opts []entity.Option) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, lookupKey(key), data, c.ttl).Err(); err != nil {
		log.Printf("WARN: lookup cache write %s: %v", key, err)
	}
}

// Flush drops every cached lookup, e.g. after an admin write changed them.
func (c *LookupCache) Flush(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, lookupKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

// FlushLookups drops cached options; called after successful admin writes.
func (c *Client) FlushLookups(ctx context.Context) {
	if err := c.cache.Flush(ctx); err != nil {
		log.Printf("WARN: lookup cache flush: %v", err)
	}
}
