package dto

// UserRes は認証済みユーザーの公開情報です。
type UserRes struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenRes はログインとトークン更新のレスポンスです。
type TokenRes struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	User         UserRes `json:"user"`
}

// VerifyRes はメール確認成功時のレスポンスです。Redirectはログイン画面のパスです。
type VerifyRes struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect"`
}
