// Package db はGORMによるデータベース接続を提供します。
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"menu_backend/internal/app/config"
	"menu_backend/internal/platform/logger"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig は全ドライバ共通のGORM設定を返します。
// TranslateErrorを有効にしてユニーク制約違反をgorm.ErrDuplicatedKeyに変換します。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// BuildDSN はPostgreSQL接続用のDSN文字列を生成します。
// DSNが明示されている場合はそれをそのまま使います。
func BuildDSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// PostgresOpener はPostgreSQL用のOpenerです。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener はSQLite用のOpenerです。
func SQLiteOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// ConnectWithRetry はtimeoutまでretryInterval間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	log := logger.WithModule("db")
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Warn("db connect failed, retrying", zap.Error(err))
		time.Sleep(retryInterval)
	}
}

// Open は設定に従って接続し、auto_migrateが有効ならmodelsをマイグレーションします。
func Open(cfg config.DatabaseConfig, models ...any) (*gorm.DB, error) {
	var (
		dsn  string
		open Opener
	)
	switch cfg.Driver {
	case "sqlite":
		dsn = cfg.Path
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		open = SQLiteOpener
	case "postgres":
		dsn = BuildDSN(cfg)
		open = PostgresOpener
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	db, err := ConnectWithRetry(dsn, timeout, open)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	logger.WithModule("db").Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}
