package di

import (
	"github.com/redis/go-redis/v9"

	"menu_backend/internal/app/config"
	"menu_backend/internal/shared/ratelimiter"
)

// NewLimiter returns a limiter shared across instances through Redis, or a
// per-process limiter when Redis is disabled.
func NewLimiter(rdb *redis.Client, cfg config.RateLimitConfig) ratelimiter.Limiter {
	lc := ratelimiter.Config{Requests: cfg.Requests, Window: cfg.Window}
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, lc)
	}
	return ratelimiter.NewMemoryLimiter(lc)
}
