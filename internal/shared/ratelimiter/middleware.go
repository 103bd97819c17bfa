package ratelimiter

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu_backend/internal/platform/http/httpx"
	"menu_backend/internal/platform/logger"
	"menu_backend/internal/platform/metrics"
)

// Middleware rejects requests over budget with 429 TOO_MANY_REQUESTS before
// the handler runs. Each scope has its own budget per client key.
// Limiter errors let the request through.
func Middleware(limiter Limiter, scope string) gin.HandlerFunc {
	log := logger.WithModule("ratelimiter")
	return func(c *gin.Context) {
		key := scope + ":" + ClientKey(c.Request)

		res, err := limiter.Limit(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			metrics.RateLimited.WithLabelValues(scope).Inc()
			log.Info("rate limit exceeded", zap.String("key", key), zap.String("path", c.FullPath()))
			httpx.WriteError(c, http.StatusTooManyRequests, httpx.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
