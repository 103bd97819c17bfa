package ratelimiter

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		want string
	}{
		{"no header", "", LoopbackKey},
		{"single", "203.0.113.7", "203.0.113.7"},
		{"first of many", " 203.0.113.7 , 10.0.0.1", "203.0.113.7"},
		{"empty first entry", " ,10.0.0.1", LoopbackKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientKey(req))
		})
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time           { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newRedisLimiter(t *testing.T, cfg Config) (*RedisLimiter, *clock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewRedisLimiter(client, cfg)
	l.now = c.now
	return l, c, mr
}

// TestRedisLimiter_Budget は予算内は許可され、超過分は拒否されることを検証します。
func TestRedisLimiter_Budget(t *testing.T) {
	l, _, _ := newRedisLimiter(t, Config{Requests: 5, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Limit(ctx, "login:203.0.113.7")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res, err := l.Limit(ctx, "login:203.0.113.7")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, time.Minute, res.RetryAfter)

	other, err := l.Limit(ctx, "login:198.51.100.1")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")
}

// TestRedisLimiter_SlidingWindow は古いリクエストが窓から外れると再び許可されることを検証します。
func TestRedisLimiter_SlidingWindow(t *testing.T) {
	l, c, mr := newRedisLimiter(t, Config{Requests: 2, Window: time.Minute})
	ctx := context.Background()

	_, _ = l.Limit(ctx, "k")
	c.advance(30 * time.Second)
	_, _ = l.Limit(ctx, "k")

	res, err := l.Limit(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	// 拒否されたリクエストは記録されない
	members, err := mr.ZMembers("ratelimit:k")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	c.advance(30 * time.Second)
	res, err = l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestRedisLimiter_KeyExpires(t *testing.T) {
	l, _, mr := newRedisLimiter(t, Config{Requests: 5, Window: time.Minute})

	_, err := l.Limit(context.Background(), "k")
	require.NoError(t, err)

	ttl := mr.TTL("ratelimit:k")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	l, _, mr := newRedisLimiter(t, Config{Requests: 5, Window: time.Minute})
	mr.Close()

	_, err := l.Limit(context.Background(), "k")
	assert.Error(t, err)
}

// TestMemoryLimiter_Budget は同一ウィンドウ内の6回目が拒否され、
// 最古のリクエストがウィンドウを抜けると再び許可されることを検証します。
func TestMemoryLimiter_Budget(t *testing.T) {
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Config{Requests: 5, Window: time.Minute})
	l.now = c.now
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Limit(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 4-i, res.Remaining)
		c.advance(time.Second)
	}

	// t=5s
	res, err := l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 55*time.Second, res.RetryAfter)

	// t=13s: トークンバケットなら許可されてしまうが、ウィンドウ内なので拒否
	c.advance(8 * time.Second)
	res, err = l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// t=59s: まだ5件ともウィンドウ内
	c.advance(46 * time.Second)
	res, err = l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// t=60.5s: t=0の1件だけが抜ける
	c.advance(1500 * time.Millisecond)
	res, err = l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = l.Limit(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)

	res, err = l.Limit(ctx, "other")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

// TestMemoryLimiter_MatchesRedis は同じ時刻列に対して両実装が同じ判定を返すことを検証します。
func TestMemoryLimiter_MatchesRedis(t *testing.T) {
	cfg := Config{Requests: 5, Window: time.Minute}
	rl, rc, _ := newRedisLimiter(t, cfg)
	ml := NewMemoryLimiter(cfg)
	mc := &clock{t: rc.t}
	ml.now = mc.now
	ctx := context.Background()

	steps := []time.Duration{0, 2, 2, 2, 2, 4, 1, 10, 20, 17, 1, 3, 30, 61}
	for i, step := range steps {
		rc.advance(step * time.Second)
		mc.advance(step * time.Second)

		want, err := rl.Limit(ctx, "k")
		require.NoError(t, err)
		got, err := ml.Limit(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, want.Allowed, got.Allowed, "step %d", i)
		assert.Equal(t, want.Remaining, got.Remaining, "step %d", i)
	}
}

func TestMemoryLimiter_SweepsIdleKeys(t *testing.T) {
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Config{Requests: 5, Window: time.Minute})
	l.now = c.now
	l.lastSweep = c.t

	_, _ = l.Limit(context.Background(), "a")
	_, _ = l.Limit(context.Background(), "b")
	require.Equal(t, 2, l.size())

	c.advance(sweepInterval + time.Second)
	_, _ = l.Limit(context.Background(), "c")

	assert.Equal(t, 1, l.size())
}
