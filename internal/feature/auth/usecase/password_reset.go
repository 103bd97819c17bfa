package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"menu_backend/internal/feature/auth/domain"
	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/platform/metrics"
)

// ResetPasswordInput はパスワード再設定フォームの入力です。
// ConfirmPasswordが空の場合は一致確認を省略します。
type ResetPasswordInput struct {
	Email           string
	Code            string
	NewPassword     string
	ConfirmPassword string
}

// ForgotPassword は再設定コードを発行してメールで送信します。
// 未登録のメールアドレスでも成功を返し、登録の有無を明かしません。
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrMissingFields
	}
	if !u.validEmail(email) {
		return domain.ErrInvalidEmail
	}

	if _, err := u.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			u.log.Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	prev, err := u.resets.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if u.now().Sub(prev.CreatedAt) < u.cfg.ResendCooldown {
			return domain.ErrResendCooldown
		}
	case errors.Is(err, ErrResetNotFound):
	default:
		return fmt.Errorf("failed to find password reset: %w", err)
	}

	code, codeHash, err := u.generateCode()
	if err != nil {
		return err
	}
	now := u.now()
	r := &entity.PasswordReset{
		Email:     email,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(u.cfg.CodeTTL),
		CreatedAt: now,
	}
	if err := u.resets.Replace(ctx, r); err != nil {
		return fmt.Errorf("failed to store password reset: %w", err)
	}
	metrics.VerificationCodes.WithLabelValues("reset").Inc()

	if err := u.sender.SendPasswordResetCode(ctx, email, code); err != nil {
		u.log.Error("failed to send password reset code", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}

// ResetPassword はコードを照合し、パスワードを更新してロック状態を解除します。
// 成功後はユーザーの全リフレッシュセッションを失効させます。
func (u *AuthUsecase) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if in.Email == "" || in.Code == "" || in.NewPassword == "" {
		return domain.ErrMissingFields
	}
	if len(in.NewPassword) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.NewPassword {
		return domain.ErrPasswordsNotMatch
	}

	r, err := u.resets.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrResetNotFound) {
			return domain.ErrInvalidCode
		}
		return fmt.Errorf("failed to find password reset: %w", err)
	}
	if r.IsExpired(u.now()) {
		return domain.ErrCodeExpired
	}
	if !u.codes.Compare(r.CodeHash, in.Code) {
		return u.rejectCode(ctx, r.ID, r.Attempts, u.resets.IncrementAttempts, u.resets.Delete)
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if err := u.resets.Delete(ctx, r.ID); err != nil {
				return fmt.Errorf("failed to discard code: %w", err)
			}
			return domain.ErrInvalidCode
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	hash, err := u.passwords.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	if err := u.resets.Consume(ctx, r, user.ID, hash); err != nil {
		if errors.Is(err, ErrResetNotFound) {
			return domain.ErrInvalidCode
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := u.sessions.RevokeAllByUserID(ctx, user.ID); err != nil {
		u.log.Error("failed to revoke sessions after password reset", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	u.log.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}
