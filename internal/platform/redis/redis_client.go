// Package redis はgo-redisクライアントの生成を提供します。
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"menu_backend/internal/app/config"
	"menu_backend/internal/platform/logger"
)

// pingTimeout は起動時の疎通確認に使うタイムアウトです。
const pingTimeout = 5 * time.Second

// NewRedisClient は設定からクライアントを生成し、PINGで疎通を確認します。
// 無効化されている場合は(nil, nil)を返し、呼び出し側はRedis無しで動作します。
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	log := logger.WithModule("redis")
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	log.Info("redis connection successful", zap.String("address", cfg.Address))
	return rdb, nil
}
