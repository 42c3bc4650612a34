package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/redis/go-redis/v9"
)

// MustNewRedisClient connects to Redis and panics on failure.
func MustNewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("STOREFRONT_REDIS_ADDR"),
		Password: os.Getenv("STOREFRONT_REDIS_PASSWORD"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("failed to connect to redis: %v", err))
	}

	return client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	key := cacheKey(filter)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []product.Product
	if err2 := json.Unmarshal(data, &products); err2 != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err2)
	}

	return products, nil
}

func (r *RedisCache) Set(ctx context.Context, filter *product.QueryProductsModel, products []product.Product) error {
	key := cacheKey(filter)
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	// Jitter spreads out expirations so one hot listing does not refill at once.
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func cacheKey(filter *product.QueryProductsModel) string {
	return fmt.Sprintf("products:%s:%s:%d:%d", filter.Search, filter.Color, filter.Limit, filter.Offset)
}
