package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "webhookd:replay:"

// RedisStore shares replay entries across instances using SET NX with a TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Reserve implements Store.
func (s *RedisStore) Reserve(ctx context.Context, key string, expiresAt, now time.Time) (bool, time.Time, error) {
	ttl := expiresAt.Sub(now)
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	redisKey := redisKeyPrefix + key

	created, err := s.client.SetNX(ctx, redisKey, now.UnixMilli(), ttl).Result()
	if err != nil {
		return false, time.Time{}, fmt.Errorf("redis setnx: %w", err)
	}
	if created {
		return true, time.Time{}, nil
	}

	remaining, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return false, time.Time{}, fmt.Errorf("redis pttl: %w", err)
	}
	if remaining < 0 {
		// Key vanished between SETNX and PTTL; report the requested expiry.
		return false, expiresAt, nil
	}
	return false, now.Add(remaining), nil
}
