// Package entity はmenuフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Theme は公開メニューの表示テーマです。
type Theme string

const (
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
	ThemeMinimal Theme = "minimal"
	ThemeElegant Theme = "elegant"
	ThemeScroll  Theme = "scroll"
)

// DefaultTheme はテーマ未指定時に使われます。
const DefaultTheme = ThemeLight

// Valid は既知のテーマかどうかを返します。
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeMinimal, ThemeElegant, ThemeScroll:
		return true
	}
	return false
}

// Menu はユーザーが所有する公開メニューです。
type Menu struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Theme       Theme  `gorm:"size:32;not null;default:light"`
	LogoURL     string `gorm:"size:2048"`

	// Categories はSortOrder順に並びます。一覧・詳細の読み込み時のみ設定されます。
	Categories []Category `gorm:"foreignKey:MenuID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy はuserIDがこのメニューの所有者かを返します。
func (m *Menu) OwnedBy(userID uint) bool {
	return userID != 0 && m.UserID == userID
}

// Category はメニュー内の見出しです。
type Category struct {
	ID        string `gorm:"primaryKey;size:36"`
	MenuID    string `gorm:"index;size:36;not null"`
	Name      string `gorm:"size:255;not null"`
	SortOrder int    `gorm:"not null;default:0"`

	Items []Item `gorm:"foreignKey:CategoryID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item はカテゴリーに属する料理や飲み物です。
type Item struct {
	ID          string  `gorm:"primaryKey;size:36"`
	CategoryID  string  `gorm:"index;size:36;not null"`
	Name        string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null;default:0"`
	ImageURL    string  `gorm:"size:2048"`
	SortOrder   int     `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
