package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores items as plain string keys under a prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend stores keys as prefix+key. A zero ttl keeps them forever.
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, b.prefix+key, value, b.ttl).Err()
}

func (b *RedisBackend) Remove(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}
