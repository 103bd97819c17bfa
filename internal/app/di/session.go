// Package di provides factories that pick Redis-backed or standalone
// implementations depending on what the deployment offers.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "menu_backend/internal/feature/auth/adapters"
	"menu_backend/internal/feature/auth/usecase"
	"menu_backend/internal/platform/session"
)

// NewSessionRepository returns a Redis-backed store when Redis is available,
// otherwise the sessions table.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, session.DefaultPrefix)
	}
	return authadapters.NewSessionGorm(db)
}
