// Package cache provides Redis read-through decorators for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"menu_backend/internal/feature/menu/domain/entity"
	"menu_backend/internal/feature/menu/usecase"
	"menu_backend/internal/platform/logger"
)

// MenuTreeFinder loads a menu with its categories and items.
type MenuTreeFinder interface {
	FindTree(ctx context.Context, id string) (*entity.Menu, error)
}

// CachingMenuReader decorates a MenuTreeFinder with Redis caching for the
// unauthenticated public menu page. A nil client disables caching.
type CachingMenuReader struct {
	inner     MenuTreeFinder
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	log       *zap.Logger
}

var _ usecase.PublicMenuReader = (*CachingMenuReader)(nil)

// NewCachingMenuReader decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "menu:public".
func NewCachingMenuReader(rdb *redis.Client, ttl time.Duration, inner MenuTreeFinder, namespace string) *CachingMenuReader {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "menu:public"
	}
	return &CachingMenuReader{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		log:       logger.WithModule("cache"),
	}
}

// FindTree returns the cached menu or loads and caches it. Lookup errors,
// including not-found, are never cached.
func (c *CachingMenuReader) FindTree(ctx context.Context, id string) (*entity.Menu, error) {
	if c.rdb == nil {
		return c.inner.FindTree(ctx, id)
	}
	key := c.key(id)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var m entity.Menu
		if err := json.Unmarshal(b, &m); err == nil {
			return &m, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && err != redis.Nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	m, err := c.inner.FindTree(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(m); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return m, nil
}

// Invalidate drops the cached copy of a menu.
func (c *CachingMenuReader) Invalidate(ctx context.Context, id string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(id)).Err()
}

func (c *CachingMenuReader) key(id string) string {
	return c.namespace + ":" + safe(id)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_").Replace(s)
}
