package ratelimiter

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// MemoryLimiter is a process-local sliding-window log per key, the in-memory
// twin of RedisLimiter. It is used when Redis is off.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	logs      map[string][]time.Time
	lastSweep time.Time
}

// NewMemoryLimiter returns an in-process limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:       cfg,
		now:       time.Now,
		logs:      make(map[string][]time.Time),
		lastSweep: time.Now(),
	}
}

// Limit records the request for key when it fits in the window.
// Rejected requests are not recorded. It never returns an error.
func (l *MemoryLimiter) Limit(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	log := prune(l.logs[key], now.Add(-l.cfg.Window))

	if len(log) >= l.cfg.Requests {
		l.logs[key] = log
		retry := log[0].Add(l.cfg.Window).Sub(now)
		if retry <= 0 {
			retry = time.Millisecond
		}
		return Result{Allowed: false, Limit: l.cfg.Requests, RetryAfter: retry}, nil
	}

	log = append(log, now)
	l.logs[key] = log
	return Result{Allowed: true, Limit: l.cfg.Requests, Remaining: l.cfg.Requests - len(log)}, nil
}

// prune drops entries at or before cutoff, matching ZREMRANGEBYSCORE 0 cutoff.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0], log[i:]...)
}

// sweep drops keys whose log has emptied. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-l.cfg.Window)
	for key, log := range l.logs {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(l.logs, key)
		}
	}
}

// size reports the number of tracked keys.
func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs)
}
