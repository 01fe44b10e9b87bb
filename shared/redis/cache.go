package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache for read model projections, bound
// to a view type T. Reads fall back to PostgreSQL on a miss, so every error
// path here degrades to a miss; only genuine Redis failures are logged.
// A zero TTL keeps entries until they are explicitly invalidated.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewViewCache[T any](client *goredis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get retrieves and unmarshals the projection stored under key.
// Returns (nil, false) when the key is absent, Redis is unreachable, or the
// stored payload no longer decodes into T (stale schema).
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("view cache: read error for key %s: %v", key, err)
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		log.Printf("view cache: stale payload for key %s: %v", key, err)
		return nil, false
	}
	return &v, true
}

// Set marshals the projection and stores it under key. Write failures are
// logged rather than returned; the next read repairs the entry from
// PostgreSQL.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("view cache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("view cache: write error for key %s: %v", key, err)
	}
}

// Delete drops the projection stored under key.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("view cache: delete error for key %s: %v", key, err)
	}
}
