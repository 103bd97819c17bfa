// Package router builds the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "menu_backend/internal/feature/auth/transport/handler"
	menuhandler "menu_backend/internal/feature/menu/transport/handler"
	"menu_backend/internal/platform/http/handler"
	"menu_backend/internal/platform/http/middleware"
	jwtmw "menu_backend/internal/platform/jwt"
	"menu_backend/internal/platform/metrics"
	"menu_backend/internal/shared/ratelimiter"
)

// Rate limiter scopes. Each scope has its own budget per client.
const (
	ScopeLogin    = "login"
	ScopeRegister = "register"
	ScopeVerify   = "verify-email"
	ScopeResend   = "resend"
	ScopeForgot   = "forgot-password"
	ScopeReset    = "reset-password"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *authhandler.AuthHandler
	Menu   *menuhandler.MenuHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	Limiter        ratelimiter.Limiter
	JWTSecret      string
	JWTIssuer      string
	TrustedProxies []string
}

// NewRouter wires middleware and routes. Recovery runs outermost so that
// panics in any later middleware still produce a JSON 500.
func NewRouter(h Handlers, opts Options) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware.Recovery(), middleware.SecurityHeaders(), middleware.AccessLog())

	// 認証不要
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.GET("/metrics", metrics.Handler())

	limit := func(scope string) gin.HandlerFunc {
		return ratelimiter.Middleware(opts.Limiter, scope)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", limit(ScopeRegister), h.Auth.Register)
		auth.POST("/verify-email", limit(ScopeVerify), h.Auth.VerifyEmail)
		auth.POST("/resend-code", limit(ScopeResend), h.Auth.ResendCode)
		auth.POST("/login", limit(ScopeLogin), h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/forgot-password", limit(ScopeForgot), h.Auth.ForgotPassword)
		auth.POST("/reset-password", limit(ScopeReset), h.Auth.ResetPassword)
	}

	r.GET("/public/menus/:id", h.Menu.Public)

	// 認証必須のルート
	private := r.Group("/")
	private.Use(jwtmw.AuthRequired(opts.JWTSecret, opts.JWTIssuer))
	{
		private.GET("/me", h.Auth.Me)

		private.GET("/menus", h.Menu.List)
		private.POST("/menus", h.Menu.Create)
		private.GET("/menus/count", h.Menu.Count)
		private.GET("/menus/:id", h.Menu.Get)
		private.PATCH("/menus/:id", h.Menu.Update)
		private.DELETE("/menus/:id", h.Menu.Delete)
		private.GET("/menus/:id/qr", h.Menu.QRCode)
		private.POST("/menus/:id/categories", h.Menu.AddCategory)

		private.DELETE("/categories/:id", h.Menu.DeleteCategory)
		private.POST("/categories/:id/items", h.Menu.AddItem)

		private.DELETE("/items/:id", h.Menu.DeleteItem)
	}

	return r, nil
}
