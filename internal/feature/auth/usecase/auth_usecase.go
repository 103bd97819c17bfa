// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"menu_backend/internal/feature/auth/domain"
	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/platform/logger"
	"menu_backend/internal/platform/metrics"
)

// minPasswordLength はパスワードの最低文字数を定義します。
const minPasswordLength = 8

// Config は認証ユースケースの閾値と有効期限です。
type Config struct {
	MaxAttempts     int
	LockDuration    time.Duration
	CodeTTL         time.Duration
	MaxCodeAttempts int
	ResendCooldown  time.Duration
	RefreshTTL      time.Duration
	MaxSessions     int
}

// DefaultConfig は本番と同じ既定値を返します。
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		LockDuration:    5 * time.Minute,
		CodeTTL:         10 * time.Minute,
		MaxCodeAttempts: 5,
		ResendCooldown:  60 * time.Second,
		RefreshTTL:      7 * 24 * time.Hour,
		MaxSessions:     5,
	}
}

// Deps はAuthUsecaseが依存するポートの集合です。
type Deps struct {
	Users     UserRepository
	Pending   PendingVerificationRepository
	Resets    PasswordResetRepository
	Sessions  SessionRepository
	Tokens    TokenGenerator
	Sender    CodeSender
	Passwords Hasher
	Codes     Hasher
}

// Option はAuthUsecaseの生成時オプションです。
type Option func(*AuthUsecase)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *AuthUsecase) { u.now = now }
}

// WithCodeGenerator はワンタイムコードの生成関数を差し替えます。
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(u *AuthUsecase) { u.newCode = gen }
}

// ClientMeta はセッションに記録するクライアント情報です。
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// Identity はセッション発行に必要な最小限のユーザー情報です。
type Identity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResult はログインとトークン更新の結果です。
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         Identity
}

// AuthUsecase は認証ビジネスロジックを実装します。
type AuthUsecase struct {
	users     UserRepository
	pending   PendingVerificationRepository
	resets    PasswordResetRepository
	sessions  SessionRepository
	tokens    TokenGenerator
	sender    CodeSender
	passwords Hasher
	codes     Hasher

	cfg      Config
	now      func() time.Time
	newCode  CodeGenerator
	validate *validator.Validate
	log      *zap.Logger

	dummyHash string
}

// dummyPassword は存在しないユーザーとの比較に使う固定文字列です。
const dummyPassword = "menu-backend-dummy-password"

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
// 未登録ユーザー用のダミーハッシュを実ハッシュと同じコストで事前に生成し、
// 生成できない場合はエラーを返します。
func NewAuthUsecase(deps Deps, cfg Config, opts ...Option) (*AuthUsecase, error) {
	u := &AuthUsecase{
		users:     deps.Users,
		pending:   deps.Pending,
		resets:    deps.Resets,
		sessions:  deps.Sessions,
		tokens:    deps.Tokens,
		sender:    deps.Sender,
		passwords: deps.Passwords,
		codes:     deps.Codes,
		cfg:       cfg,
		now:       time.Now,
		newCode:   RandomCode,
		validate:  validator.New(),
		log:       logger.WithModule("auth"),
	}
	for _, opt := range opts {
		opt(u)
	}
	h, err := u.passwords.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	u.dummyHash = h
	return u, nil
}

// Login はユーザーを認証し、成功時にアクセストークンとリフレッシュトークンを返します。
// 失敗はErrInvalidCredentialsかErrAccountLockedのいずれかです。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string, meta ClientMeta) (*LoginResult, error) {
	if email == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			u.passwords.Compare(u.dummyHash, password)
			metrics.AuthAttempts.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := u.now()
	if user.IsLocked(now) {
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		return nil, domain.ErrAccountLocked
	}

	if !u.passwords.Compare(user.PasswordHash, password) {
		return nil, u.recordFailure(ctx, user, now)
	}

	if err := u.users.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to reset login state: %w", err)
	}

	result, err := u.issue(ctx, user, meta)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return result, nil
}

// recordFailure は失敗回数を1増やして保存し、閾値に達した場合はロックします。
// 期限切れのロックが残っている場合、カウンタは0から数え直します。
func (u *AuthUsecase) recordFailure(ctx context.Context, user *entity.User, now time.Time) error {
	attempts := user.EffectiveAttempts(now) + 1

	var lockUntil *time.Time
	if attempts >= u.cfg.MaxAttempts {
		until := now.Add(u.cfg.LockDuration)
		lockUntil = &until
	}

	if err := u.users.UpdateLoginState(ctx, user.ID, attempts, lockUntil); err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to record login failure: %w", err)
	}

	if lockUntil != nil {
		metrics.AccountLocks.Inc()
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		u.log.Warn("account locked", zap.Uint("user_id", user.ID), zap.Int("attempts", attempts))
		return domain.ErrAccountLocked
	}
	metrics.AuthAttempts.WithLabelValues("invalid").Inc()
	return domain.ErrInvalidCredentials
}

// Refresh はリフレッシュトークンをローテーションし、新しいトークン一式を返します。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !session.IsValid(u.now()) {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := u.sessions.Revoke(ctx, session.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	return u.issue(ctx, user, meta)
}

// Logout はリフレッシュトークンを失効させます。未知のトークンでも成功します。
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, refreshToken); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Me は認証済みユーザーの情報を返します。
func (u *AuthUsecase) Me(ctx context.Context, userID uint) (*Identity, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	id := identityOf(user)
	return &id, nil
}

// issue はアクセストークンを生成し、新しいリフレッシュセッションを保存します。
// セッション数が上限に達している場合は最も古いものを削除します。
func (u *AuthUsecase) issue(ctx context.Context, user *entity.User, meta ClientMeta) (*LoginResult, error) {
	access, err := u.tokens.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	if u.cfg.MaxSessions > 0 {
		count, err := u.sessions.CountByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions: %w", err)
		}
		if count >= int64(u.cfg.MaxSessions) {
			if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to drop oldest session: %w", err)
			}
		}
	}

	now := u.now()
	session := &entity.Session{
		ID:        refresh,
		UserID:    user.ID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.RefreshTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    u.tokens.TTL(),
		User:         identityOf(user),
	}, nil
}

func identityOf(user *entity.User) Identity {
	return Identity{ID: user.ID, Email: user.Email, Name: user.Name}
}
