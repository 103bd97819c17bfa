// Package usecase はmenuフィーチャーのビジネスロジックを実装します。
// 非公開データの読み取りと全ての書き込みは、対象メニューの所有者確認を通ります。
package usecase

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"menu_backend/internal/feature/menu/domain"
	"menu_backend/internal/feature/menu/domain/entity"
	"menu_backend/internal/platform/logger"
)

// DefaultFreeLimit は無料プランで作成できるメニュー数です。
const DefaultFreeLimit = 3

// MenuInput はメニュー作成時の入力です。
type MenuInput struct {
	Title       string
	Description string
	Theme       string
	LogoURL     string
}

// MenuPatch はメニュー更新時の入力です。nilの項目は変更しません。
type MenuPatch struct {
	Title       *string
	Description *string
	Theme       *string
	LogoURL     *string
}

// ItemInput はアイテム追加時の入力です。
type ItemInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// MenuUsecase はメニュー操作を実装します。
type MenuUsecase struct {
	menus     MenuRepository
	public    PublicMenuReader
	qr        QREncoder
	freeLimit int
	newID     func() string
	log       *zap.Logger
}

// NewMenuUsecase はMenuUsecaseを生成します。freeLimitが0以下の場合はDefaultFreeLimitを使います。
func NewMenuUsecase(menus MenuRepository, public PublicMenuReader, qr QREncoder, freeLimit int) *MenuUsecase {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLimit
	}
	return &MenuUsecase{
		menus:     menus,
		public:    public,
		qr:        qr,
		freeLimit: freeLimit,
		newID:     uuid.NewString,
		log:       logger.WithModule("menu"),
	}
}

// ListMenus はユーザーのメニュー一覧を返します。
func (u *MenuUsecase) ListMenus(ctx context.Context, userID uint) ([]entity.Menu, error) {
	return u.menus.ListByUser(ctx, userID)
}

// CountMenus はユーザーのメニュー数を返します。
func (u *MenuUsecase) CountMenus(ctx context.Context, userID uint) (int64, error) {
	return u.menus.CountByUser(ctx, userID)
}

// CreateMenu は上限を確認したうえでメニューを作成します。
func (u *MenuUsecase) CreateMenu(ctx context.Context, userID uint, in MenuInput) (*entity.Menu, error) {
	if userID == 0 {
		return nil, domain.ErrNotOwner
	}
	n, err := u.menus.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count menus: %w", err)
	}
	if n >= int64(u.freeLimit) {
		return nil, domain.ErrMenuLimitReached
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	theme, err := parseTheme(in.Theme)
	if err != nil {
		return nil, err
	}
	logo, err := parseOptionalURL(in.LogoURL)
	if err != nil {
		return nil, err
	}

	m := &entity.Menu{
		ID:          u.newID(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Theme:       theme,
		LogoURL:     logo,
	}
	if err := u.menus.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	return m, nil
}

// GetMenu は所有者にカテゴリーとアイテムを含むメニューを返します。
func (u *MenuUsecase) GetMenu(ctx context.Context, userID uint, menuID string) (*entity.Menu, error) {
	if _, err := u.ownedMenu(ctx, userID, menuID); err != nil {
		return nil, err
	}
	return u.menus.FindTree(ctx, menuID)
}

// UpdateMenu は指定された項目のみを検証して更新します。検証に失敗した場合は何も書き込みません。
func (u *MenuUsecase) UpdateMenu(ctx context.Context, userID uint, menuID string, p MenuPatch) (*entity.Menu, error) {
	m, err := u.ownedMenu(ctx, userID, menuID)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		m.Title = title
	}
	if p.Description != nil {
		m.Description = strings.TrimSpace(*p.Description)
	}
	if p.Theme != nil {
		theme, err := parseTheme(*p.Theme)
		if err != nil {
			return nil, err
		}
		m.Theme = theme
	}
	if p.LogoURL != nil {
		logo, err := parseOptionalURL(*p.LogoURL)
		if err != nil {
			return nil, err
		}
		m.LogoURL = logo
	}

	if err := u.menus.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}
	u.invalidate(ctx, m.ID)
	return m, nil
}

// DeleteMenu はメニューと配下のカテゴリー・アイテムを削除します。
func (u *MenuUsecase) DeleteMenu(ctx context.Context, userID uint, menuID string) error {
	if _, err := u.ownedMenu(ctx, userID, menuID); err != nil {
		return err
	}
	if err := u.menus.Delete(ctx, menuID); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	u.invalidate(ctx, menuID)
	return nil
}

// AddCategory はメニューの末尾にカテゴリーを追加します。
func (u *MenuUsecase) AddCategory(ctx context.Context, userID uint, menuID, name string) (*entity.Category, error) {
	if _, err := u.ownedMenu(ctx, userID, menuID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	c := &entity.Category{ID: u.newID(), MenuID: menuID, Name: name}
	if err := u.menus.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	u.invalidate(ctx, menuID)
	return c, nil
}

// DeleteCategory はカテゴリーと配下のアイテムを削除します。
func (u *MenuUsecase) DeleteCategory(ctx context.Context, userID uint, categoryID string) error {
	c, err := u.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if err := u.menus.DeleteCategory(ctx, c.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	u.invalidate(ctx, c.MenuID)
	return nil
}

// AddItem はカテゴリーの末尾にアイテムを追加します。
func (u *MenuUsecase) AddItem(ctx context.Context, userID uint, categoryID string, in ItemInput) (*entity.Item, error) {
	c, err := u.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return nil, domain.ErrInvalidPrice
	}
	img, err := parseOptionalURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	it := &entity.Item{
		ID:          u.newID(),
		CategoryID:  c.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		ImageURL:    img,
	}
	if err := u.menus.CreateItem(ctx, it); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	u.invalidate(ctx, c.MenuID)
	return it, nil
}

// DeleteItem はアイテムを削除します。所有者はカテゴリー経由でメニューまで辿って確認します。
func (u *MenuUsecase) DeleteItem(ctx context.Context, userID uint, itemID string) error {
	it, err := u.menus.FindItem(ctx, itemID)
	if err != nil {
		return err
	}
	c, err := u.ownedCategory(ctx, userID, it.CategoryID)
	if err != nil {
		return err
	}
	if err := u.menus.DeleteItem(ctx, it.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	u.invalidate(ctx, c.MenuID)
	return nil
}

// PublicMenu は認証なしで公開メニューを返します。
func (u *MenuUsecase) PublicMenu(ctx context.Context, menuID string) (*entity.Menu, error) {
	return u.public.FindTree(ctx, menuID)
}

// MenuQRCode は公開メニューURLのQRコードPNGを所有者に返します。
func (u *MenuUsecase) MenuQRCode(ctx context.Context, userID uint, menuID, locale string) ([]byte, error) {
	if _, err := u.ownedMenu(ctx, userID, menuID); err != nil {
		return nil, err
	}
	png, err := u.qr.MenuPNG(locale, menuID)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// ownedMenu はメニューを取得し、userIDが所有者でなければErrNotOwnerを返します。
func (u *MenuUsecase) ownedMenu(ctx context.Context, userID uint, menuID string) (*entity.Menu, error) {
	m, err := u.menus.FindByID(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if !m.OwnedBy(userID) {
		u.log.Warn("ownership check failed", zap.Uint("user_id", userID), zap.String("menu_id", menuID))
		return nil, domain.ErrNotOwner
	}
	return m, nil
}

func (u *MenuUsecase) ownedCategory(ctx context.Context, userID uint, categoryID string) (*entity.Category, error) {
	c, err := u.menus.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if _, err := u.ownedMenu(ctx, userID, c.MenuID); err != nil {
		return nil, err
	}
	return c, nil
}

// invalidate は公開メニューのキャッシュを破棄します。失敗してもTTLで失効するため記録のみ行います。
func (u *MenuUsecase) invalidate(ctx context.Context, menuID string) {
	if err := u.public.Invalidate(ctx, menuID); err != nil {
		u.log.Warn("public menu cache invalidation failed", zap.String("menu_id", menuID), zap.Error(err))
	}
}

func parseTheme(raw string) (entity.Theme, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.DefaultTheme, nil
	}
	t := entity.Theme(strings.ToLower(raw))
	if !t.Valid() {
		return "", domain.ErrInvalidTheme
	}
	return t, nil
}

func parseOptionalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", domain.ErrInvalidURL
	}
	return raw, nil
}
