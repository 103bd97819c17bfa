package entity

import "time"

// Session はリフレッシュトークン1件分のログインセッションです。
type Session struct {
	ID        string     `json:"id"`         // リフレッシュトークン（64文字の16進文字列）
	UserID    uint       `json:"user_id"`    // 所有ユーザーID
	UserAgent string     `json:"user_agent"` // クライアントのUser-Agent
	IPAddress string     `json:"ip_address"` // クライアントのIPアドレス
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"` // 失効時刻（有効ならnil）
}

// IsExpired はnow時点で有効期限を過ぎているかを返します。
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsRevoked は失効済みかを返します。
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid は期限内かつ未失効であるかを返します。
func (s *Session) IsValid(now time.Time) bool {
	return !s.IsExpired(now) && !s.IsRevoked()
}
