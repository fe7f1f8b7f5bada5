package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "govuk-questions"
	defaultTTL         = 24 * time.Hour
	redisScanCount     = 100
)

// RedisBackend stores values in Redis with an optional expiry, so abandoned
// journey instances are cleaned up automatically.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	owned  bool
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithTTL sets how long an instance survives after its last write.
// Default is 24 hours. Set to 0 for no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(b *RedisBackend) {
		b.ttl = ttl
	}
}

// WithPrefix sets the key prefix for Redis keys.
// Default is "govuk-questions".
func WithPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) {
		b.prefix = prefix
	}
}

// WithOwnedClient makes Close also close the Redis client.
func WithOwnedClient() RedisOption {
	return func(b *RedisBackend) {
		b.owned = true
	}
}

// NewRedisBackend creates a Redis-backed Backend.
//
//	backend := NewRedisBackend(
//	    redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//	    WithTTL(2 * time.Hour),
//	)
func NewRedisBackend(client *redis.Client, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{
		client: client,
		ttl:    defaultTTL,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + ":" + key
}

func (b *RedisBackend) List(ctx context.Context) ([]string, error) {
	var keys []string
	pattern := b.prefix + ":*"
	iter := b.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: redis scan: %v", ErrLoadFailed, err)
	}
	return keys, nil
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: redis get: %v", ErrLoadFailed, err)
	}
	return data, nil
}

func (b *RedisBackend) Save(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, b.key(key), value, b.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrSaveFailed, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	if !b.owned {
		return nil
	}
	return b.client.Close()
}
