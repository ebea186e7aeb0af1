package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"regula/pkg/platform/sentinel"
)

const screeningKeyPrefix = "screening:party:"

// RedisCache is a Redis-backed Cache for deployments where multiple
// instances share screening state. Expiry is delegated to Redis TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed screening cache. The client
// lifecycle is managed externally.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Find(ctx context.Context, key string) (*Result, error) {
	payload, err := c.client.Get(ctx, screeningKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find screening cache: %w", err)
	}
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode screening cache entry: %w", err)
	}
	return &result, nil
}

func (c *RedisCache) Save(ctx context.Context, key string, result *Result) error {
	if result == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode screening cache entry: %w", err)
	}
	if err := c.client.Set(ctx, screeningKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save screening cache: %w", err)
	}
	return nil
}
