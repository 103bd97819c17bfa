package entity

import "time"

// PendingVerification はメール確認待ちの仮登録です。
// メールアドレスごとに有効なレコードは最大1件で、コードはハッシュのみ保存します。
type PendingVerification struct {
	ID           uint
	Email        string
	Name         string
	PasswordHash string
	CodeHash     string
	Attempts     int
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// IsExpired はnow時点でコードの有効期限が過ぎているかを返します。
func (p *PendingVerification) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PasswordReset はパスワード再設定用のワンタイムコードです。
type PasswordReset struct {
	ID        uint
	Email     string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired はnow時点でコードの有効期限が過ぎているかを返します。
func (r *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
