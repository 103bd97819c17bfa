// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthAttempts counts login attempts by outcome (success|invalid|locked|error).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// AccountLocks counts transitions into the locked state.
	AccountLocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_account_locks_total",
			Help: "Total number of accounts locked after repeated failures",
		},
	)

	// VerificationCodes counts issued one-time codes by purpose (register|resend|reset).
	VerificationCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_verification_codes_total",
			Help: "Total number of one-time codes issued",
		},
		[]string{"purpose"},
	)

	// RateLimited counts requests rejected by the limiter, per scope.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menu_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
