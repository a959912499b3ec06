package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lattice/audio2manim/internal/logger"
)

const redisOpTimeout = 5 * time.Second

// RedisCache backs the cache contract with a shared Redis instance so
// that several workers can reuse each other's transcriptions and
// generated code. Keys are namespaced under a fixed prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{client: client, prefix: "audio2manim:", ttl: ttl}, nil
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get fetches an entry. Connection errors are logged and reported as
// misses so callers fall through to recomputation.
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("redis cache get failed",
			logger.String("key", key),
			logger.ErrorField(err))
		return nil, false
	}
	return data, true
}

// Set stores an entry with the configured TTL.
func (c *RedisCache) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Clear removes every entry under the cache prefix.
func (c *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis cache clear: %w", err)
		}
	}
	return iter.Err()
}

// Stats counts entries under the prefix. Sizes are not tracked for the
// Redis store.
func (c *RedisCache) Stats() Stats {
	st := Stats{Location: c.client.Options().Addr}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		st.Entries++
	}
	return st
}

// Close releases the underlying connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
