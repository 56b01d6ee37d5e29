package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gh:ratelimit:"

// RedisStore shares the sliding window across instances using a sorted set
// of request timestamps per key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, span time.Duration) (*Result, error) {
	now := time.Now()
	redisKey := keyPrefix + key
	cutoff := strconv.FormatInt(now.Add(-span).UnixNano(), 10)
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", cutoff)
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit count: %w", err)
	}

	if int(count.Val()) >= limit {
		return &Result{
			Allowed: false,
			Limit:   limit,
			ResetAt: now.Add(span),
		}, nil
	}

	pipe = s.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, span)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit record: %w", err)
	}

	return &Result{
		Allowed:   true,
		Remaining: limit - int(count.Val()) - 1,
		Limit:     limit,
		ResetAt:   now.Add(span),
	}, nil
}
