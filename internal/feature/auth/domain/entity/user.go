// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User は登録済みユーザーの認証情報とロックアウト状態を保持します。
type User struct {
	// ID はユーザーの一意な識別子です。
	ID uint `gorm:"primaryKey"`

	// Email は認証に使うメールアドレスです。大文字小文字を区別し、全ユーザーで一意です。
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Name は表示名です。未入力の場合は空文字です。
	Name string `gorm:"size:255"`

	// PasswordHash はbcryptでハッシュ化されたパスワードです。平文は保存しません。
	PasswordHash string `gorm:"size:255;not null"`

	// LoginAttempts は最後の成功（またはロック解除）以降の連続失敗回数です。
	LoginAttempts int `gorm:"not null;default:0"`

	// LockUntil が未来の時刻である間は、パスワードが正しくても認証を拒否します。
	LockUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked はnow時点でアカウントがロックされているかを返します。
// LockUntilがnowより厳密に後の場合のみロック中です。
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// EffectiveAttempts はnow時点で有効な連続失敗回数を返します。
// ロック期限が過ぎている場合、カウンタはリセット済みとして扱います。
func (u *User) EffectiveAttempts(now time.Time) int {
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		return 0
	}
	return u.LoginAttempts
}
