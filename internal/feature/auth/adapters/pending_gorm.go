package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/feature/auth/usecase"
)

// pendingGorm はPendingVerificationRepositoryのGORM実装です。
type pendingGorm struct {
	db *gorm.DB
}

var _ usecase.PendingVerificationRepository = (*pendingGorm)(nil)

// NewPendingGorm はpendingGormの新しいインスタンスを生成します。
func NewPendingGorm(db *gorm.DB) *pendingGorm {
	return &pendingGorm{db: db}
}

// replaceAttempts は並行するReplaceと衝突した場合の試行回数の上限です。
const replaceAttempts = 3

// replaceByEmail はemailの既存行削除とinsertを1つのトランザクションで実行します。
// 並行する置き換えが先にコミットしてユニーク制約に違反した場合はやり直し、後勝ちにします。
func replaceByEmail(ctx context.Context, db *gorm.DB, email string, table any, insert func(tx *gorm.DB) error) error {
	var err error
	for i := 0; i < replaceAttempts; i++ {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("email = ?", email).Delete(table).Error; err != nil {
				return err
			}
			return insert(tx)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// Replace は同じメールアドレスの既存行を削除して新しい行を挿入します。
func (r *pendingGorm) Replace(ctx context.Context, p *entity.PendingVerification) error {
	model := pendingModelFromEntity(p)
	err := replaceByEmail(ctx, r.db, p.Email, &PendingVerificationModel{}, func(tx *gorm.DB) error {
		model.ID = 0
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

// FindByEmail はメールアドレスの仮登録を取得します。
func (r *pendingGorm) FindByEmail(ctx context.Context, email string) (*entity.PendingVerification, error) {
	var m PendingVerificationModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPendingNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}

// IncrementAttempts はattempts列をSQL側で1加算します。
func (r *pendingGorm) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&PendingVerificationModel{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

// Delete は仮登録を削除します。存在しない場合も成功します。
func (r *pendingGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&PendingVerificationModel{}, id).Error
}

// Promote は仮登録の削除とユーザー作成を1つのトランザクションで行います。
// 削除対象が既に無い場合は並行する検証が先に完了したとみなします。
func (r *pendingGorm) Promote(ctx context.Context, p *entity.PendingVerification, user *entity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&PendingVerificationModel{}, p.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrPendingNotFound
		}
		return createUser(tx, user)
	})
}

// DeleteExpired は期限切れの仮登録を削除します。
func (r *pendingGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&PendingVerificationModel{})
	return result.RowsAffected, result.Error
}
