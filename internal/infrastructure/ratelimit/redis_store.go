package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a sorted set of request timestamps per key so that
// several API instances share one limit. Scores are unix microseconds.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

// NewRedisStore wraps a shared Redis client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "shop:ratelimit:",
		now:       time.Now,
	}
}

// Allow implements Store
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now()
	redisKey := s.keyPrefix + key
	member := strconv.FormatInt(now.UnixMicro(), 10) + "-" + uuid.NewString()[:8]
	windowStart := now.Add(-window).UnixMicro()

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart, 10))
		card = p.ZCard(ctx, redisKey)
		p.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
		p.PExpire(ctx, redisKey, window)
		oldest = p.ZRangeWithScores(ctx, redisKey, 0, 0)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit pipeline: %w", err)
	}

	count := int(card.Val())
	res := Result{Limit: limit, ResetAt: now.Add(window)}

	if zs := oldest.Val(); len(zs) > 0 {
		first := time.UnixMicro(int64(zs[0].Score))
		res.ResetAt = first.Add(window)
	}

	if count >= limit {
		// rejected requests do not consume capacity
		if err := s.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return Result{}, fmt.Errorf("ratelimit rollback: %w", err)
		}
		res.RetryAfter = res.ResetAt.Sub(now)
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Millisecond
		}
		return res, nil
	}

	res.Allowed = true
	res.Remaining = limit - count - 1
	return res, nil
}

var _ Store = (*RedisStore)(nil)
