// Package cache keeps small JSON documents, such as filter option lists, in
// a shared key/value store. A Cache without a store is a pass-through.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/storage/redis/v3"
)

// Storage is the subset of the fiber storage interface the cache uses.
// Get returns nil for a missing key.
type Storage interface {
	GetWithContext(ctx context.Context, key string) ([]byte, error)
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
	DeleteWithContext(ctx context.Context, key string) error
}

// Cache stores JSON values under a key prefix with a fixed TTL.
type Cache struct {
	store  Storage
	ttl    time.Duration
	prefix string
}

// New creates a cache. A nil store disables caching.
func New(store Storage, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, prefix: "outreach:"}
}

// Enabled reports whether values are actually stored.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// NewRedis connects to Redis at url. The storage driver panics when the
// server is unreachable; that is returned as an error instead.
func NewRedis(url string) (s *redis.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect to redis: %v", r)
		}
	}()
	return redis.New(redis.Config{URL: url}), nil
}

// Get decodes the value at key into dst and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.store.GetWithContext(ctx, c.prefix+key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set encodes v and stores it at key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.SetWithContext(ctx, c.prefix+key, raw, c.ttl)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.store.DeleteWithContext(ctx, c.prefix+key)
}

// Fetch returns the cached value at key, calling load and caching its result
// on a miss. Cache failures are logged and never fail the call.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	found, err := c.Get(ctx, key, &v)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
	}
	if found {
		return v, nil
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// Refresh calls load and overwrites key with the result.
func Refresh[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) error {
	v, err := load(ctx)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, v)
}
