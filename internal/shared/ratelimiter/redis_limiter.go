package ratelimiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding-window log kept in one sorted set per key.
// Scores are request times in milliseconds; rejected requests are not logged.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	prefix string
	now    func() time.Time
}

// NewRedisLimiter returns a limiter sharing its counters through Redis.
func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg, prefix: "ratelimit", now: time.Now}
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + ":" + key
}

// Limit records the request and reports whether it fits in the window.
func (l *RedisLimiter) Limit(ctx context.Context, key string) (Result, error) {
	k := l.key(key)
	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", strconv.FormatInt(nowMs-windowMs, 10))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(nowMs), Member: member})
	card := pipe.ZCard(ctx, k)
	pipe.PExpire(ctx, k, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit: %w", err)
	}

	count := int(card.Val())
	if count <= l.cfg.Requests {
		return Result{Allowed: true, Limit: l.cfg.Requests, Remaining: l.cfg.Requests - count}, nil
	}

	if err := l.client.ZRem(ctx, k, member).Err(); err != nil {
		return Result{}, fmt.Errorf("ratelimit: %w", err)
	}
	return Result{
		Allowed:    false,
		Limit:      l.cfg.Requests,
		RetryAfter: l.retryAfter(ctx, k, nowMs, windowMs),
	}, nil
}

// retryAfter is the time until the oldest logged request leaves the window.
func (l *RedisLimiter) retryAfter(ctx context.Context, k string, nowMs, windowMs int64) time.Duration {
	oldest, err := l.client.ZRangeWithScores(ctx, k, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return l.cfg.Window
	}
	wait := int64(oldest[0].Score) + windowMs - nowMs
	if wait <= 0 {
		return time.Millisecond
	}
	return time.Duration(wait) * time.Millisecond
}
