// Package cache holds the optional read-through cache for public catalog
// listings. Every entry lives in a namespace; invalidating a namespace drops
// all of its entries at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultTTL    = 5 * time.Minute
	DefaultPrefix = "designghar:cache:"
)

// Generation is the namespace version a Get observed. Set writes under that
// version, so a value loaded before an Invalidate is never served after it.
// The zero value means the version could not be read.
type Generation string

// Cache stores JSON-encoded values by namespace and key. Get reports a miss for
// any error so callers fall through to the store, then pass the returned
// Generation to Set.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dst any) (Generation, bool)
	Set(ctx context.Context, namespace, key string, gen Generation, v any) error
	Invalidate(ctx context.Context, namespace string) error
}

// RedisCache versions each namespace with a generation counter. Invalidate
// bumps the counter, so stale entries become unreachable and expire by TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	hits   int64
	misses int64
}

type Option func(*RedisCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

func WithPrefix(prefix string) Option {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

func NewRedisCache(client *redis.Client, opts ...Option) *RedisCache {
	c := &RedisCache{
		client: client,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect builds a client for addr and verifies it with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: failed to connect to redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) genKey(namespace string) string {
	return c.prefix + namespace + ":gen"
}

func (c *RedisCache) generation(ctx context.Context, namespace string) (Generation, error) {
	gen, err := c.client.Get(ctx, c.genKey(namespace)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return Generation(gen), nil
}

func (c *RedisCache) entryKey(namespace string, gen Generation, key string) string {
	return fmt.Sprintf("%s%s:%s:%s", c.prefix, namespace, gen, key)
}

func (c *RedisCache) Get(ctx context.Context, namespace, key string, dst any) (Generation, bool) {
	gen, err := c.generation(ctx, namespace)
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return "", false
	}
	val, err := c.client.Get(ctx, c.entryKey(namespace, gen, key)).Bytes()
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return gen, false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		atomic.AddInt64(&c.misses, 1)
		return gen, false
	}
	atomic.AddInt64(&c.hits, 1)
	return gen, true
}

// Set stores v under gen. If the namespace was invalidated since gen was read
// the entry lands in a retired generation and is never read.
func (c *RedisCache) Set(ctx context.Context, namespace, key string, gen Generation, v any) error {
	if gen == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value: %w", err)
	}
	k := c.entryKey(namespace, gen, key)
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set %s: %w", k, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, namespace string) error {
	if err := c.client.Incr(ctx, c.genKey(namespace)).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate %s: %w", namespace, err)
	}
	return nil
}

// Stats returns hit and miss counters.
func (c *RedisCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Nop is used when no Redis address is configured. Every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string, string, any) (Generation, bool) { return "", false }

func (Nop) Set(context.Context, string, string, Generation, any) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
