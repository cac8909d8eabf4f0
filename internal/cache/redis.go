// Package cache remembers labels returned by the remote recognition
// endpoint, keyed by the hash of the uploaded JPEG.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "meal-score:label:"

// LabelCache stores recognized labels by key.
type LabelCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, label string) error
}

// Key derives the cache key for an encoded image.
func Key(jpeg []byte) string {
	sum := sha256.Sum256(jpeg)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache is a LabelCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	label, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return label, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, label string) error {
	if err := c.client.Set(ctx, key, label, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	label   string
	expires time.Time
}

// Memory is an in-process LabelCache. A zero ttl never expires entries.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// Open returns a Redis-backed cache for redisURL, or an in-process one
// when redisURL is empty.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (LabelCache, error) {
	if redisURL == "" {
		return NewMemory(ttl), nil
	}
	c, err := NewRedisCache(ctx, redisURL, ttl)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.label, true, nil
}

func (m *Memory) Set(_ context.Context, key, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{label: label}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}
