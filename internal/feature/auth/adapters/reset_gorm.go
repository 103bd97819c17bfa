package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/feature/auth/usecase"
)

// resetGorm はPasswordResetRepositoryのGORM実装です。
type resetGorm struct {
	db *gorm.DB
}

var _ usecase.PasswordResetRepository = (*resetGorm)(nil)

// NewResetGorm はresetGormの新しいインスタンスを生成します。
func NewResetGorm(db *gorm.DB) *resetGorm {
	return &resetGorm{db: db}
}

func (r *resetGorm) Replace(ctx context.Context, p *entity.PasswordReset) error {
	model := &PasswordResetModel{
		Email:     p.Email,
		CodeHash:  p.CodeHash,
		Attempts:  p.Attempts,
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	}
	err := replaceByEmail(ctx, r.db, p.Email, &PasswordResetModel{}, func(tx *gorm.DB) error {
		model.ID = 0
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

func (r *resetGorm) FindByEmail(ctx context.Context, email string) (*entity.PasswordReset, error) {
	var m PasswordResetModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrResetNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

func (r *resetGorm) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&PasswordResetModel{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

func (r *resetGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&PasswordResetModel{}, id).Error
}

// Consume は再設定コードの削除とパスワード更新を1つのトランザクションで行い、
// 同時にログイン失敗回数とロックを解除します。
func (r *resetGorm) Consume(ctx context.Context, p *entity.PasswordReset, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&PasswordResetModel{}, p.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrResetNotFound
		}

		result = tx.Model(&entity.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"password_hash":  passwordHash,
				"login_attempts": 0,
				"lock_until":     nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		return nil
	})
}

func (r *resetGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&PasswordResetModel{})
	return result.RowsAffected, result.Error
}
