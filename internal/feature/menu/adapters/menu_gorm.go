// Package adapters はmenuフィーチャーの永続化層をGORMで実装します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"menu_backend/internal/feature/menu/domain"
	"menu_backend/internal/feature/menu/domain/entity"
	"menu_backend/internal/feature/menu/usecase"
)

// Models はマイグレーション対象のモデルを返します。
func Models() []any {
	return []any{&entity.Menu{}, &entity.Category{}, &entity.Item{}}
}

// menuGorm はMenuRepositoryインターフェースのGORM実装です。
type menuGorm struct {
	db *gorm.DB
}

var _ usecase.MenuRepository = (*menuGorm)(nil)

// NewMenuGorm はmenuGormの新しいインスタンスを生成します。
func NewMenuGorm(db *gorm.DB) *menuGorm {
	return &menuGorm{db: db}
}

func orderedTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Categories.Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, created_at ASC")
		})
}

// ListByUser はユーザーのメニューをカテゴリーとアイテム込みで新しい順に返します。
func (r *menuGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Menu, error) {
	var menus []entity.Menu
	err := orderedTree(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&menus).Error
	return menus, err
}

// CountByUser はユーザーのメニュー数を返します。
func (r *menuGorm) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Menu{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// Create はメニューを追加します。
func (r *menuGorm) Create(ctx context.Context, m *entity.Menu) error {
	if m == nil {
		return errors.New("menu is nil")
	}
	return r.db.WithContext(ctx).Omit("Categories").Create(m).Error
}

// FindByID はメニュー本体を取得します。
func (r *menuGorm) FindByID(ctx context.Context, id string) (*entity.Menu, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// FindTree はカテゴリーとアイテムを含めてメニューを取得します。
func (r *menuGorm) FindTree(ctx context.Context, id string) (*entity.Menu, error) {
	return r.first(orderedTree(r.db.WithContext(ctx)), id)
}

func (r *menuGorm) first(q *gorm.DB, id string) (*entity.Menu, error) {
	if id == "" {
		return nil, domain.ErrMenuNotFound
	}
	var m entity.Menu
	if err := q.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMenuNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update は編集可能な列を書き込みます。空文字も値として保存します。
func (r *menuGorm) Update(ctx context.Context, m *entity.Menu) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Menu{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"title":       m.Title,
			"description": m.Description,
			"theme":       m.Theme,
			"logo_url":    m.LogoURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrMenuNotFound
	}
	return nil
}

// Delete はアイテム、カテゴリー、メニューの順に1つのトランザクションで削除します。
func (r *menuGorm) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs := tx.Model(&entity.Category{}).Select("id").Where("menu_id = ?", id)
		if err := tx.Where("category_id IN (?)", categoryIDs).Delete(&entity.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_id = ?", id).Delete(&entity.Category{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Menu{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrMenuNotFound
		}
		return nil
	})
}

// CreateCategory はメニュー内の最大SortOrder+1を採番して追加します。
func (r *menuGorm) CreateCategory(ctx context.Context, c *entity.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&entity.Category{}).
			Where("menu_id = ?", c.MenuID).
			Select("COALESCE(MAX(sort_order), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		c.SortOrder = next
		return tx.Omit("Items").Create(c).Error
	})
}

// FindCategory はカテゴリーを取得します。
func (r *menuGorm) FindCategory(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCategory はカテゴリーと配下のアイテムを削除します。
func (r *menuGorm) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&entity.Item{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}

// CreateItem はカテゴリー内の最大SortOrder+1を採番して追加します。
func (r *menuGorm) CreateItem(ctx context.Context, it *entity.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&entity.Item{}).
			Where("category_id = ?", it.CategoryID).
			Select("COALESCE(MAX(sort_order), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		it.SortOrder = next
		return tx.Create(it).Error
	})
}

// FindItem はアイテムを取得します。
func (r *menuGorm) FindItem(ctx context.Context, id string) (*entity.Item, error) {
	var it entity.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// DeleteItem はアイテムを削除します。
func (r *menuGorm) DeleteItem(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
