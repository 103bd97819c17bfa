// Package domain はmenuフィーチャーのクライアント向けエラーを定義します。
package domain

import "errors"

var (
	// ErrNotOwner はリソースの所有者と操作ユーザーが一致しないことを示します。
	ErrNotOwner = errors.New("resource belongs to another user")

	// ErrMenuNotFound はメニューが存在しないことを示します。
	ErrMenuNotFound = errors.New("menu not found")

	// ErrCategoryNotFound はカテゴリーが存在しないことを示します。
	ErrCategoryNotFound = errors.New("category not found")

	// ErrItemNotFound はアイテムが存在しないことを示します。
	ErrItemNotFound = errors.New("item not found")

	// ErrMenuLimitReached は無料プランのメニュー作成上限に達したことを示します。
	ErrMenuLimitReached = errors.New("menu limit reached")

	// ErrTitleRequired はメニューのタイトルが空であることを示します。
	ErrTitleRequired = errors.New("title required")

	// ErrNameRequired はカテゴリーまたはアイテムの名前が空であることを示します。
	ErrNameRequired = errors.New("name required")

	// ErrInvalidTheme は未知のテーマ識別子を示します。
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidURL はロゴや画像のURLが絶対http(s) URLでないことを示します。
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidPrice は価格が負数または有限でないことを示します。
	ErrInvalidPrice = errors.New("invalid price")
)
