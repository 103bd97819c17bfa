// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu_backend/internal/platform/logger"
)

// checkTimeout は依存先ごとの疎通確認タイムアウトです。
const checkTimeout = 2 * time.Second

// Checker は依存先（DB、Redis）の疎通確認関数です。
type Checker func(ctx context.Context) error

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks map[string]Checker
}

// NewHealthHandler は名前付きのCheckerでHealthHandlerを生成します。nilのCheckerは無視します。
func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	filtered := make(map[string]Checker, len(checks))
	for name, fn := range checks {
		if fn != nil {
			filtered[name] = fn
		}
	}
	return &HealthHandler{checks: filtered}
}

// Health はサービスヘルスチェックを処理します。
// HEADとOPTIONSは依存先を確認せずに応答し、GETは全Checkerを実行して
// いずれかが失敗すれば503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			logger.WithModule("health").Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}
