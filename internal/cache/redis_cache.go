package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "stock:qty:"

// RedisStockQuantityCache keeps aggregate stock quantities in Redis.
type RedisStockQuantityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStockQuantityCache creates a Redis-backed stock quantity cache
func NewRedisStockQuantityCache(addr, password string, db int) *RedisStockQuantityCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStockQuantityCache{
		client: client,
		ttl:    15 * time.Minute,
	}
}

// Ping verifies the Redis connection
func (c *RedisStockQuantityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisStockQuantityCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockQuantityCache) Get(ctx context.Context, productID uuid.UUID) (int, bool, error) {
	val, err := c.client.Get(ctx, stockKeyPrefix+productID.String()).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	qty, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

func (c *RedisStockQuantityCache) Set(ctx context.Context, productID uuid.UUID, quantity int) error {
	return c.client.Set(ctx, stockKeyPrefix+productID.String(), strconv.Itoa(quantity), c.ttl).Err()
}

func (c *RedisStockQuantityCache) Invalidate(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, stockKeyPrefix+productID.String()).Err()
}
