package redis

import (
	"context"
	"time"

	"ai-persona-advisors/backend/pkg/config"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects using the Redis section of the app config.
func NewRedisClient() *RedisClient {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &RedisClient{client: client}
}

// Ping checks the connection; callers decide whether a dead Redis is fatal.
func (r *RedisClient) Ping() error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Set(key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Get(key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisClient) Del(key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
