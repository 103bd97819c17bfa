// Package ratelimiter bounds how often a client may call a sensitive endpoint.
//
// The limiter is advisory: the client key comes from a header the client
// controls, so account lockout remains the authoritative brute-force defense.
package ratelimiter

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// LoopbackKey is used when a request carries no forwarded address so that
// local traffic is still limited under a stable key.
const LoopbackKey = "127.0.0.1"

// Config is a request budget per window.
type Config struct {
	Requests int
	Window   time.Duration
}

// Result reports the outcome of a single Limit call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter consumes one unit of budget for key.
type Limiter interface {
	Limit(ctx context.Context, key string) (Result, error)
}

// ClientKey returns the first X-Forwarded-For value, or LoopbackKey.
func ClientKey(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return LoopbackKey
	}
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return LoopbackKey
}
