// Package logger はプロセス全体で共有するzapロガーを提供します。
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	mu           sync.RWMutex
)

// Init が呼ばれる前でも使えるようにNopロガーを入れておく
func init() {
	globalLogger = zap.NewNop()
}

// Init は指定されたレベル文字列でグローバルロガーを初期化します。
// 解釈できないレベルはinfoとして扱います。
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	Set(l)
	return nil
}

// Set はグローバルロガーを差し替えます。テストでobserverを注入する用途にも使います。
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
}

// Logger は現在のグローバルロガーを返します。
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Sync はバッファ済みのログを書き出します。
func Sync() error {
	return Logger().Sync()
}

// WithModule はmoduleフィールド付きの子ロガーを返します。
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}
