package usecase

import (
	"context"
	"time"

	"menu_backend/internal/feature/auth/domain/entity"
)

// UserRepository はユーザー（認証情報）の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。重複時はErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdateLoginState は失敗回数とロック期限を1回の書き込みで更新します。
	UpdateLoginState(ctx context.Context, id uint, attempts int, lockUntil *time.Time) error
}

// PendingVerificationRepository はメール確認待ちの仮登録を扱います。
type PendingVerificationRepository interface {
	// Replace は同じメールアドレスの既存レコードを削除して新しいレコードを挿入します。
	// 削除と挿入は1つのトランザクションで行います。
	Replace(ctx context.Context, p *entity.PendingVerification) error

	// FindByEmail は仮登録を取得します。存在しない場合はErrPendingNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.PendingVerification, error)

	// IncrementAttempts はコード入力の失敗回数を1増やします。
	IncrementAttempts(ctx context.Context, id uint) error

	// Delete は仮登録を削除します。
	Delete(ctx context.Context, id uint) error

	// Promote は仮登録を削除してユーザーを作成します。両方が成功した場合のみコミットします。
	// 仮登録が既に無い場合はErrPendingNotFound、メールアドレス重複時はErrEmailAlreadyExistsを返します。
	Promote(ctx context.Context, p *entity.PendingVerification, user *entity.User) error

	// DeleteExpired はnowより前に期限切れとなったレコードを削除し、件数を返します。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetRepository はパスワード再設定コードを扱います。
type PasswordResetRepository interface {
	Replace(ctx context.Context, r *entity.PasswordReset) error
	FindByEmail(ctx context.Context, email string) (*entity.PasswordReset, error)
	IncrementAttempts(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error

	// Consume は再設定レコードを削除し、ユーザーのパスワードを更新してロック状態を解除します。
	// 両方が成功した場合のみコミットします。
	Consume(ctx context.Context, r *entity.PasswordReset, userID uint, passwordHash string) error

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepository abstracts the persistence layer for session entities.
type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (refresh token value).
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke marks a session as revoked by setting RevokedAt.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes all sessions for a given user.
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes all expired sessions from storage.
	// Returns the number of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID returns the number of active sessions for a user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID deletes the oldest session for a user.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}

// TokenGenerator はアクセストークン生成のインターフェースです。
type TokenGenerator interface {
	GenerateToken(userID uint, email, name string) (string, error)
	TTL() time.Duration
}

// CodeSender はワンタイムコードを利用者のメールアドレスへ届けます。
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
}
