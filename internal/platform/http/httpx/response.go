// Package httpx holds the JSON envelope shared by every handler.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes that are not owned by a single feature.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request. Error is a stable,
// machine-readable code the web client localises.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse is returned by endpoints that have nothing else to say.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Mapping pairs an HTTP status with an error code.
type Mapping struct {
	Status int
	Code   string
}

// WriteError aborts the request with the given status and code.
func WriteError(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code})
}

// WriteInternal hides err from the client; callers log it first.
func WriteInternal(c *gin.Context) {
	WriteError(c, http.StatusInternalServerError, CodeInternal)
}

// WriteOK writes {"ok":true}.
func WriteOK(c *gin.Context) {
	c.JSON(http.StatusOK, OKResponse{OK: true})
}
