// Package dto はmenuフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"menu_backend/internal/feature/menu/domain/entity"
)

// CreateMenuReq はPOST /menusのリクエストボディです。
type CreateMenuReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	LogoURL     string `json:"logoUrl"`
}

// UpdateMenuReq はPATCH /menus/:idのリクエストボディです。省略した項目は変更しません。
type UpdateMenuReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Theme       *string `json:"theme"`
	LogoURL     *string `json:"logoUrl"`
}

// CategoryReq はPOST /menus/:id/categoriesのリクエストボディです。
type CategoryReq struct {
	Name string `json:"name"`
}

// ItemReq はPOST /categories/:id/itemsのリクエストボディです。
type ItemReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// CountRes はGET /menus/countのレスポンスです。
type CountRes struct {
	Count int64 `json:"count"`
}

// ItemRes はアイテムのレスポンス表現です。
type ItemRes struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"categoryId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

// CategoryRes はカテゴリーのレスポンス表現です。
type CategoryRes struct {
	ID        string    `json:"id"`
	MenuID    string    `json:"menuId"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	Items     []ItemRes `json:"items"`
}

// MenuRes はメニューのレスポンス表現です。UserIDは公開ビューでは省略します。
type MenuRes struct {
	ID          string        `json:"id"`
	UserID      uint          `json:"userId,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Theme       string        `json:"theme"`
	LogoURL     string        `json:"logoUrl,omitempty"`
	Categories  []CategoryRes `json:"categories"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewItemRes はエンティティをレスポンスに変換します。
func NewItemRes(it entity.Item) ItemRes {
	return ItemRes{
		ID:          it.ID,
		CategoryID:  it.CategoryID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		ImageURL:    it.ImageURL,
		SortOrder:   it.SortOrder,
	}
}

// NewCategoryRes はエンティティをレスポンスに変換します。
func NewCategoryRes(c entity.Category) CategoryRes {
	items := make([]ItemRes, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, NewItemRes(it))
	}
	return CategoryRes{ID: c.ID, MenuID: c.MenuID, Name: c.Name, SortOrder: c.SortOrder, Items: items}
}

// NewMenuRes はエンティティをレスポンスに変換します。
func NewMenuRes(m entity.Menu) MenuRes {
	cats := make([]CategoryRes, 0, len(m.Categories))
	for _, c := range m.Categories {
		cats = append(cats, NewCategoryRes(c))
	}
	return MenuRes{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Theme:       string(m.Theme),
		LogoURL:     m.LogoURL,
		Categories:  cats,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// NewPublicMenuRes は所有者情報を除いた公開用の表現を返します。
func NewPublicMenuRes(m entity.Menu) MenuRes {
	res := NewMenuRes(m)
	res.UserID = 0
	return res
}
