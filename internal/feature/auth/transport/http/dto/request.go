// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
// 入力値の検証はusecaseで行うため、ここではJSONの形だけを定義します。
package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterReq は/auth/registerエンドポイントのリクエストボディを表します。Nameは任意です。
type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailReq は/auth/verify-emailエンドポイントのリクエストボディを表します。
type VerifyEmailReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailReq はメールアドレスのみを受け取るエンドポイント（resend-code, forgot-password）のリクエストボディです。
type EmailReq struct {
	Email string `json:"email"`
}

// ResetPasswordReq は/auth/reset-passwordエンドポイントのリクエストボディを表します。
type ResetPasswordReq struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RefreshReq は/auth/refreshと/auth/logoutのリクエストボディを表します。
type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
