package jwtmw

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"menu_backend/internal/platform/http/httpx"
)

// Context keys set by AuthRequired.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			httpx.WriteError(c, http.StatusUnauthorized, httpx.CodeUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. Parse and verify (HS256 only)
		claims, err := Parse(tokenStr, key, issuer)
		if err != nil {
			httpx.WriteError(c, http.StatusUnauthorized, httpx.CodeUnauthorized)
			return
		}

		// 3. Extract the subject
		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || id == 0 {
			httpx.WriteError(c, http.StatusUnauthorized, httpx.CodeUnauthorized)
			return
		}
		c.Set(ContextUserID, uint(id))
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// UserID returns the authenticated user id stored by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
