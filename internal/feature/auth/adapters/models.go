// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"menu_backend/internal/feature/auth/domain/entity"
)

// Models はauthフィーチャーがマイグレーションするテーブルのモデルです。
func Models() []any {
	return []any{&entity.User{}, &PendingVerificationModel{}, &PasswordResetModel{}, &SessionModel{}}
}

// PendingVerificationModel はemail_verification_codesテーブルのGORMモデルです。
// emailのユニークインデックスにより、行はメールアドレスごとに1件です。
type PendingVerificationModel struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	Name         string    `gorm:"size:255"`
	PasswordHash string    `gorm:"size:255;not null"`
	CodeHash     string    `gorm:"size:255;not null"`
	Attempts     int       `gorm:"not null;default:0"`
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PendingVerificationModel) TableName() string {
	return "email_verification_codes"
}

func (m *PendingVerificationModel) toEntity() *entity.PendingVerification {
	return &entity.PendingVerification{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CodeHash:     m.CodeHash,
		Attempts:     m.Attempts,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
	}
}

func pendingModelFromEntity(p *entity.PendingVerification) *PendingVerificationModel {
	return &PendingVerificationModel{
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: p.PasswordHash,
		CodeHash:     p.CodeHash,
		Attempts:     p.Attempts,
		ExpiresAt:    p.ExpiresAt,
		CreatedAt:    p.CreatedAt,
	}
}

// PasswordResetModel はpassword_reset_codesテーブルのGORMモデルです。
type PasswordResetModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	CodeHash  string    `gorm:"size:255;not null"`
	Attempts  int       `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PasswordResetModel) TableName() string {
	return "password_reset_codes"
}

func (m *PasswordResetModel) toEntity() *entity.PasswordReset {
	return &entity.PasswordReset{
		ID:        m.ID,
		Email:     m.Email,
		CodeHash:  m.CodeHash,
		Attempts:  m.Attempts,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}
