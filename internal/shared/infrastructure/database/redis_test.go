package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisConfig_Options(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: "6380", Password: "pw", DB: 2}
	assert.Equal(t, "redis.example.com:6380", cfg.Addr())

	opts := cfg.options()
	assert.Equal(t, "redis.example.com:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, connectTimeout, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}

func TestNewRedis_Unreachable(t *testing.T) {
	client, err := NewRedis(context.Background(), RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.ErrorContains(t, err, "127.0.0.1:1")
	assert.Nil(t, client)
}

func TestNewRedis_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := NewRedis(ctx, RedisConfig{Host: "127.0.0.1", Port: "6379"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
