// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu_backend/internal/feature/auth/domain"
	"menu_backend/internal/feature/auth/transport/http/dto"
	"menu_backend/internal/feature/auth/usecase"
	"menu_backend/internal/platform/http/httpx"
	jwtmw "menu_backend/internal/platform/jwt"
	"menu_backend/internal/platform/logger"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uint) (*usecase.Identity, error)
	Register(ctx context.Context, in usecase.RegisterInput) error
	VerifyEmail(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) error
}

// Error codes returned by the auth endpoints.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodePasswordsNotMatch  = "PASSWORDS_NOT_MATCH"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCode        = "INVALID_CODE"
	CodeCodeExpired        = "CODE_EXPIRED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeResendCooldown     = "RESEND_COOLDOWN"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
)

// errorMappings はドメインエラーとHTTPステータス・エラーコードの対応表です。
var errorMappings = []struct {
	err error
	httpx.Mapping
}{
	{domain.ErrInvalidCredentials, httpx.Mapping{Status: http.StatusUnauthorized, Code: CodeInvalidCredentials}},
	{domain.ErrAccountLocked, httpx.Mapping{Status: http.StatusUnauthorized, Code: CodeAccountLocked}},
	{domain.ErrMissingFields, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeMissingFields}},
	{domain.ErrInvalidEmail, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeInvalidEmail}},
	{domain.ErrPasswordTooShort, httpx.Mapping{Status: http.StatusBadRequest, Code: CodePasswordTooShort}},
	{domain.ErrPasswordsNotMatch, httpx.Mapping{Status: http.StatusBadRequest, Code: CodePasswordsNotMatch}},
	{domain.ErrEmailExists, httpx.Mapping{Status: http.StatusConflict, Code: CodeEmailExists}},
	{domain.ErrInvalidCode, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeInvalidCode}},
	{domain.ErrCodeExpired, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeCodeExpired}},
	{domain.ErrTooManyAttempts, httpx.Mapping{Status: http.StatusTooManyRequests, Code: CodeTooManyAttempts}},
	{domain.ErrResendCooldown, httpx.Mapping{Status: http.StatusTooManyRequests, Code: CodeResendCooldown}},
	{domain.ErrAlreadyVerified, httpx.Mapping{Status: http.StatusConflict, Code: CodeAlreadyVerified}},
	{domain.ErrInvalidRefreshToken, httpx.Mapping{Status: http.StatusUnauthorized, Code: httpx.CodeUnauthorized}},
	{usecase.ErrUserNotFound, httpx.Mapping{Status: http.StatusUnauthorized, Code: httpx.CodeUnauthorized}},
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
	log  *zap.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, log: logger.WithModule("auth.handler")}
}

// writeError はエラーを対応表に従ってレスポンスに変換します。
// 対応表に無いエラーはサーバー側でのみ記録し、INTERNAL_ERRORを返します。
func (h *AuthHandler) writeError(c *gin.Context, op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.String("client_ip", c.ClientIP()), zap.Error(err))
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			h.log.Info("auth request rejected", append(fields, zap.String("code", m.Code))...)
			httpx.WriteError(c, m.Status, m.Code)
			return
		}
	}
	h.log.Error("auth request failed", fields...)
	httpx.WriteInternal(c)
}

// bind はJSONをdstにバインドします。失敗時は400を書き込みfalseを返します。
func (h *AuthHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Warn("invalid request body", zap.Error(err), zap.String("client_ip", c.ClientIP()))
		httpx.WriteError(c, http.StatusBadRequest, httpx.CodeInvalidRequest)
		return false
	}
	return true
}

func clientMeta(c *gin.Context) usecase.ClientMeta {
	return usecase.ClientMeta{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func tokenResponse(res *usecase.LoginResult) dto.TokenRes {
	return dto.TokenRes{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(res.ExpiresIn.Seconds()),
		User:         dto.UserRes{ID: res.User.ID, Email: res.User.Email, Name: res.User.Name},
	}
}

// Login はログインAPIエンドポイントを処理します。
// 失敗はINVALID_CREDENTIALSかACCOUNT_LOCKEDのいずれかで、ユーザーの有無は明かしません。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		h.writeError(c, "login", err, zap.String("email", req.Email))
		return
	}
	h.log.Info("user login successful", zap.Uint("user_id", res.User.ID), zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, tokenResponse(res))
}

// Refresh はリフレッシュトークンをローテーションします。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, clientMeta(c))
	if err != nil {
		h.writeError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(res))
}

// Logout はリフレッシュトークンを失効させます。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshReq
	if !h.bind(c, &req) {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeError(c, "logout", err)
		return
	}
	httpx.WriteOK(c)
}

// Me はアクセストークンの持ち主の情報を返します。AuthRequiredの後段で使います。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		httpx.WriteError(c, http.StatusUnauthorized, httpx.CodeUnauthorized)
		return
	}
	id, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, dto.UserRes{ID: id.ID, Email: id.Email, Name: id.Name})
}

// Register はユーザー登録（仮登録と確認コード送信）を処理します。
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !h.bind(c, &req) {
		return
	}
	in := usecase.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.auth.Register(c.Request.Context(), in); err != nil {
		h.writeError(c, "register", err, zap.String("email", req.Email))
		return
	}
	h.log.Info("registration pending verification", zap.String("email", req.Email))
	httpx.WriteOK(c)
}

// VerifyEmail は確認コードを検証し、成功時はログイン画面へのリダイレクト先を返します。
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailReq
	if !h.bind(c, &req) {
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.Code); err != nil {
		h.writeError(c, "verify-email", err, zap.String("email", req.Email))
		return
	}
	c.JSON(http.StatusOK, dto.VerifyRes{OK: true, Redirect: "/login"})
}

// ResendCode は確認コードを再送信します。
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req dto.EmailReq
	if !h.bind(c, &req) {
		return
	}
	if err := h.auth.ResendCode(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, "resend-code", err, zap.String("email", req.Email))
		return
	}
	httpx.WriteOK(c)
}

// ForgotPassword はパスワード再設定コードを送信します。未登録でも{ok:true}を返します。
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailReq
	if !h.bind(c, &req) {
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, "forgot-password", err, zap.String("email", req.Email))
		return
	}
	httpx.WriteOK(c)
}

// ResetPassword は再設定コードで新しいパスワードを設定します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if !h.bind(c, &req) {
		return
	}
	in := usecase.ResetPasswordInput{
		Email:           req.Email,
		Code:            req.Code,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}
	if err := h.auth.ResetPassword(c.Request.Context(), in); err != nil {
		h.writeError(c, "reset-password", err, zap.String("email", req.Email))
		return
	}
	httpx.WriteOK(c)
}
