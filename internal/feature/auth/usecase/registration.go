package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"menu_backend/internal/feature/auth/domain"
	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/platform/metrics"
)

// RegisterInput は新規登録フォームの入力です。Nameは任意です。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register は入力を検証し、仮登録を作成して確認コードを送信します。
// 検証に失敗した場合はハッシュ化も永続化も行いません。
// 送信失敗時はErrDeliveryを返しますが、仮登録はコミット済みのまま期限切れを待ちます。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) error {
	if in.Email == "" || in.Password == "" {
		return domain.ErrMissingFields
	}
	if !u.validEmail(in.Email) {
		return domain.ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}

	if err := u.ensureUnregistered(ctx, in.Email); err != nil {
		return err
	}

	hash, err := u.passwords.Hash(in.Password)
	if err != nil {
		return err
	}
	return u.sendVerification(ctx, in.Email, strings.TrimSpace(in.Name), hash, "register")
}

// VerifyEmail は確認コードを照合し、一致すれば仮登録を本登録に昇格させます。
// コードは1回限りで、成功後の再送信はErrInvalidCodeになります。
func (u *AuthUsecase) VerifyEmail(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return domain.ErrMissingFields
	}

	p, err := u.pending.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return domain.ErrInvalidCode
		}
		return fmt.Errorf("failed to find pending verification: %w", err)
	}
	if p.IsExpired(u.now()) {
		return domain.ErrCodeExpired
	}
	if !u.codes.Compare(p.CodeHash, code) {
		return u.rejectCode(ctx, p.ID, p.Attempts, u.pending.IncrementAttempts, u.pending.Delete)
	}

	user := &entity.User{
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: p.PasswordHash,
	}
	if err := u.pending.Promote(ctx, p, user); err != nil {
		// 並行した検証が先に昇格させた場合
		if errors.Is(err, ErrPendingNotFound) || errors.Is(err, ErrEmailAlreadyExists) {
			return domain.ErrInvalidCode
		}
		return fmt.Errorf("failed to promote pending verification: %w", err)
	}

	u.log.Info("email verified", zap.Uint("user_id", user.ID))
	return nil
}

// ResendCode は同じ仮登録に新しいコードを発行して再送信します。
// 前回の発行からResendCooldownが経過するまではErrResendCooldownを返します。
func (u *AuthUsecase) ResendCode(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrMissingFields
	}

	p, err := u.pending.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrPendingNotFound) {
			return fmt.Errorf("failed to find pending verification: %w", err)
		}
		if _, err := u.users.FindByEmail(ctx, email); err == nil {
			return domain.ErrAlreadyVerified
		} else if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("failed to find user: %w", err)
		}
		return domain.ErrInvalidCode
	}

	if u.now().Sub(p.CreatedAt) < u.cfg.ResendCooldown {
		return domain.ErrResendCooldown
	}
	return u.sendVerification(ctx, p.Email, p.Name, p.PasswordHash, "resend")
}

// ensureUnregistered は同じメールアドレスの本登録ユーザーが無いことを確認します。
func (u *AuthUsecase) ensureUnregistered(ctx context.Context, email string) error {
	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailExists
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("failed to find user: %w", err)
	}
}

// sendVerification は新しいコードで仮登録を置き換え、コードをメールで送信します。
func (u *AuthUsecase) sendVerification(ctx context.Context, email, name, passwordHash, purpose string) error {
	code, codeHash, err := u.generateCode()
	if err != nil {
		return err
	}

	now := u.now()
	p := &entity.PendingVerification{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CodeHash:     codeHash,
		ExpiresAt:    now.Add(u.cfg.CodeTTL),
		CreatedAt:    now,
	}
	if err := u.pending.Replace(ctx, p); err != nil {
		return fmt.Errorf("failed to store pending verification: %w", err)
	}
	metrics.VerificationCodes.WithLabelValues(purpose).Inc()

	if err := u.sender.SendVerificationCode(ctx, email, code); err != nil {
		u.log.Error("failed to send verification code", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}

// generateCode は平文のコードとそのハッシュを返します。
func (u *AuthUsecase) generateCode() (string, string, error) {
	code, err := u.newCode()
	if err != nil {
		return "", "", err
	}
	hash, err := u.codes.Hash(code)
	if err != nil {
		return "", "", err
	}
	return code, hash, nil
}

// rejectCode はコード不一致を記録します。
// 失敗回数がMaxCodeAttemptsに達した場合はレコードを破棄してErrTooManyAttemptsを返します。
func (u *AuthUsecase) rejectCode(
	ctx context.Context,
	id uint,
	attempts int,
	increment func(context.Context, uint) error,
	drop func(context.Context, uint) error,
) error {
	if u.cfg.MaxCodeAttempts > 0 && attempts+1 >= u.cfg.MaxCodeAttempts {
		if err := drop(ctx, id); err != nil {
			return fmt.Errorf("failed to discard code: %w", err)
		}
		return domain.ErrTooManyAttempts
	}
	if err := increment(ctx, id); err != nil {
		return fmt.Errorf("failed to record code attempt: %w", err)
	}
	return domain.ErrInvalidCode
}

// validEmail はvalidatorのemailルールでメールアドレスの形式を検証します。
func (u *AuthUsecase) validEmail(email string) bool {
	return u.validate.Var(email, "required,email") == nil
}
