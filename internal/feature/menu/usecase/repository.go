package usecase

import (
	"context"

	"menu_backend/internal/feature/menu/domain/entity"
)

// MenuRepository はメニュー集約（メニュー・カテゴリー・アイテム）の永続化層を抽象化します。
// 見つからない場合はdomainのErr*NotFoundを返します。
type MenuRepository interface {
	// ListByUser はユーザーのメニューをカテゴリーとアイテム込みで作成日の新しい順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Menu, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)

	Create(ctx context.Context, m *entity.Menu) error

	// FindByID はメニュー本体のみを返します。所有者確認に使います。
	FindByID(ctx context.Context, id string) (*entity.Menu, error)

	// FindTree はカテゴリーとアイテムをSortOrder順に含めて返します。
	FindTree(ctx context.Context, id string) (*entity.Menu, error)

	Update(ctx context.Context, m *entity.Menu) error

	// Delete はメニューと配下のカテゴリー・アイテムを1つのトランザクションで削除します。
	Delete(ctx context.Context, id string) error

	// CreateCategory はカテゴリーをメニューの末尾に追加します（SortOrderは採番されます）。
	CreateCategory(ctx context.Context, c *entity.Category) error
	FindCategory(ctx context.Context, id string) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// CreateItem はアイテムをカテゴリーの末尾に追加します（SortOrderは採番されます）。
	CreateItem(ctx context.Context, it *entity.Item) error
	FindItem(ctx context.Context, id string) (*entity.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// PublicMenuReader は公開メニューの読み取りとキャッシュ無効化を提供します。
// Redisが無い場合はMenuRepositoryへの素通しで構いません。
type PublicMenuReader interface {
	FindTree(ctx context.Context, id string) (*entity.Menu, error)
	Invalidate(ctx context.Context, id string) error
}

// QREncoder は公開メニューURLのQRコードPNGを生成します。
type QREncoder interface {
	MenuPNG(locale, menuID string) ([]byte, error)
}
