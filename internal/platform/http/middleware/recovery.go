package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu_backend/internal/platform/http/httpx"
	"menu_backend/internal/platform/logger"
)

// Recovery converts panics into a 500 INTERNAL_ERROR response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				httpx.WriteInternal(c)
			}
		}()
		c.Next()
	}
}
