package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RouteCache stores routing geometry in Redis. A cache built without a URL,
// or whose server was unreachable at startup, is disabled: reads miss and
// writes are dropped.
type RouteCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
}

// NewRouteCache sets up the Redis connection if redisURL is provided.
func NewRouteCache(redisURL string, ttl time.Duration) *RouteCache {
	c := &RouteCache{ttl: ttl}
	if redisURL == "" {
		slog.Info("redis URL not provided, route caching disabled")
		return c
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("failed to parse redis URL, route caching disabled", "error", err)
		return c
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("failed to connect to redis, route caching disabled", "error", err)
		client.Close()
		return c
	}

	c.client = client
	c.enabled = true
	slog.Info("redis route cache initialized", "ttl", ttl)
	return c
}

// NewRouteCacheWithClient wraps an existing client, for callers that manage
// the connection themselves.
func NewRouteCacheWithClient(client *redis.Client, ttl time.Duration) *RouteCache {
	return &RouteCache{client: client, ttl: ttl, enabled: client != nil}
}

func (c *RouteCache) Enabled() bool {
	return c != nil && c.enabled
}

// Close closes the Redis connection
func (c *RouteCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Set stores a value as JSON under key with the cache TTL.
func (c *RouteCache) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Get decodes the value under key into dest. A miss returns redis.Nil.
func (c *RouteCache) Get(ctx context.Context, key string, dest any) error {
	if !c.Enabled() {
		return redis.Nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache
func (c *RouteCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
