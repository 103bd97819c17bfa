package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu_backend/internal/feature/menu/domain"
	"menu_backend/internal/feature/menu/domain/entity"
)

const (
	owner    uint = 1
	stranger uint = 2
)

func strPtr(s string) *string { return &s }

func (f *fixture) seedMenu(t *testing.T) *entity.Menu {
	t.Helper()
	m, err := f.uc.CreateMenu(context.Background(), owner, MenuInput{Title: "Dinner"})
	require.NoError(t, err)
	return m
}

func TestCreateMenu_Defaults(t *testing.T) {
	f := newFixture()

	m, err := f.uc.CreateMenu(context.Background(), owner, MenuInput{
		Title:       "  Dinner  ",
		Description: " Seasonal ",
		LogoURL:     "https://cdn.example.com/logo.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "id-01", m.ID)
	assert.Equal(t, owner, m.UserID)
	assert.Equal(t, "Dinner", m.Title)
	assert.Equal(t, "Seasonal", m.Description)
	assert.Equal(t, entity.ThemeLight, m.Theme)
	assert.Equal(t, "https://cdn.example.com/logo.png", m.LogoURL)
}

func TestCreateMenu_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   MenuInput
		want error
	}{
		{"blank title", MenuInput{Title: "   "}, domain.ErrTitleRequired},
		{"unknown theme", MenuInput{Title: "A", Theme: "neon"}, domain.ErrInvalidTheme},
		{"relative logo", MenuInput{Title: "A", LogoURL: "/logo.png"}, domain.ErrInvalidURL},
		{"non-http logo", MenuInput{Title: "A", LogoURL: "javascript:alert(1)"}, domain.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.CreateMenu(context.Background(), owner, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.repo.writes)
		})
	}
}

func TestCreateMenu_ThemeIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	m, err := f.uc.CreateMenu(context.Background(), owner, MenuInput{Title: "A", Theme: "Elegant"})
	require.NoError(t, err)
	assert.Equal(t, entity.ThemeElegant, m.Theme)
}

// TestCreateMenu_Limit は上限に達したユーザーが作成できず、他ユーザーには影響しないことを検証します。
func TestCreateMenu_Limit(t *testing.T) {
	f := newFixture()
	for i := 0; i < DefaultFreeLimit; i++ {
		f.seedMenu(t)
	}

	_, err := f.uc.CreateMenu(context.Background(), owner, MenuInput{Title: "Fourth"})
	assert.ErrorIs(t, err, domain.ErrMenuLimitReached)

	_, err = f.uc.CreateMenu(context.Background(), stranger, MenuInput{Title: "Mine"})
	assert.NoError(t, err)

	n, err := f.uc.CountMenus(context.Background(), owner)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultFreeLimit, n)
}

func TestCreateMenu_Errors(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CreateMenu(context.Background(), 0, MenuInput{Title: "A"})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	f.repo.CountErr = errBoom
	_, err = f.uc.CreateMenu(context.Background(), owner, MenuInput{Title: "A"})
	assert.ErrorIs(t, err, errBoom)
}

func TestListMenus_OnlyOwn(t *testing.T) {
	f := newFixture()
	f.seedMenu(t)
	_, err := f.uc.CreateMenu(context.Background(), stranger, MenuInput{Title: "Other"})
	require.NoError(t, err)

	menus, err := f.uc.ListMenus(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "Dinner", menus[0].Title)
}

// TestOwnershipGuard は所有者以外のあらゆる操作がErrNotOwnerで拒否され、何も書き込まれないことを検証します。
func TestOwnershipGuard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.seedMenu(t)
	c, err := f.uc.AddCategory(ctx, owner, m.ID, "Starters")
	require.NoError(t, err)
	it, err := f.uc.AddItem(ctx, owner, c.ID, ItemInput{Name: "Soup", Price: 4.5})
	require.NoError(t, err)

	writes := f.repo.writes
	invalidations := len(f.public.invalidated)

	ops := map[string]func(uid uint) error{
		"get": func(uid uint) error { _, err := f.uc.GetMenu(ctx, uid, m.ID); return err },
		"update": func(uid uint) error {
			_, err := f.uc.UpdateMenu(ctx, uid, m.ID, MenuPatch{Title: strPtr("Hijacked")})
			return err
		},
		"delete":          func(uid uint) error { return f.uc.DeleteMenu(ctx, uid, m.ID) },
		"add category":    func(uid uint) error { _, err := f.uc.AddCategory(ctx, uid, m.ID, "X"); return err },
		"delete category": func(uid uint) error { return f.uc.DeleteCategory(ctx, uid, c.ID) },
		"add item": func(uid uint) error {
			_, err := f.uc.AddItem(ctx, uid, c.ID, ItemInput{Name: "X"})
			return err
		},
		"delete item": func(uid uint) error { return f.uc.DeleteItem(ctx, uid, it.ID) },
		"qr":          func(uid uint) error { _, err := f.uc.MenuQRCode(ctx, uid, m.ID, "en"); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(stranger), domain.ErrNotOwner)
			assert.ErrorIs(t, op(0), domain.ErrNotOwner)
		})
	}

	assert.Equal(t, writes, f.repo.writes, "no write may happen for a non-owner")
	assert.Len(t, f.public.invalidated, invalidations)
	stored, err := f.repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", stored.Title)
}

func TestNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.GetMenu(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrMenuNotFound)
	assert.ErrorIs(t, f.uc.DeleteCategory(ctx, owner, "missing"), domain.ErrCategoryNotFound)
	assert.ErrorIs(t, f.uc.DeleteItem(ctx, owner, "missing"), domain.ErrItemNotFound)
	_, err = f.uc.PublicMenu(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMenuNotFound)
}

func TestUpdateMenu(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.seedMenu(t)

	got, err := f.uc.UpdateMenu(ctx, owner, m.ID, MenuPatch{Theme: strPtr("dark"), LogoURL: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, entity.ThemeDark, got.Theme)
	assert.Equal(t, "Dinner", got.Title, "untouched fields stay")
	assert.Equal(t, []string{m.ID}, f.public.invalidated)

	writes := f.repo.writes
	_, err = f.uc.UpdateMenu(ctx, owner, m.ID, MenuPatch{Title: strPtr("New"), Theme: strPtr("neon")})
	assert.ErrorIs(t, err, domain.ErrInvalidTheme)
	assert.Equal(t, writes, f.repo.writes)

	_, err = f.uc.UpdateMenu(ctx, owner, m.ID, MenuPatch{Title: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestCategoriesAndItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.seedMenu(t)

	_, err := f.uc.AddCategory(ctx, owner, m.ID, " ")
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	starters, err := f.uc.AddCategory(ctx, owner, m.ID, "Starters")
	require.NoError(t, err)
	mains, err := f.uc.AddCategory(ctx, owner, m.ID, "Mains")
	require.NoError(t, err)
	assert.Equal(t, 0, starters.SortOrder)
	assert.Equal(t, 1, mains.SortOrder)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = f.uc.AddItem(ctx, owner, starters.ID, ItemInput{Name: "Soup", Price: bad})
		assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	}
	_, err = f.uc.AddItem(ctx, owner, starters.ID, ItemInput{Name: "Soup", ImageURL: "soup.png"})
	assert.ErrorIs(t, err, domain.ErrInvalidURL)

	soup, err := f.uc.AddItem(ctx, owner, starters.ID, ItemInput{Name: "Soup", Price: 0})
	require.NoError(t, err)

	tree, err := f.uc.GetMenu(ctx, owner, m.ID)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 2)
	assert.Equal(t, "Starters", tree.Categories[0].Name)
	require.Len(t, tree.Categories[0].Items, 1)

	require.NoError(t, f.uc.DeleteItem(ctx, owner, soup.ID))
	require.NoError(t, f.uc.DeleteCategory(ctx, owner, mains.ID))

	tree, err = f.uc.PublicMenu(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 1)
	assert.Empty(t, tree.Categories[0].Items)

	// 追加3件と削除2件のすべてで公開キャッシュを破棄する
	assert.Len(t, f.public.invalidated, 5)
	for _, id := range f.public.invalidated {
		assert.Equal(t, m.ID, id)
	}
}

func TestDeleteMenu_Cascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.seedMenu(t)
	c, err := f.uc.AddCategory(ctx, owner, m.ID, "Drinks")
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteMenu(ctx, owner, m.ID))

	_, err = f.uc.GetMenu(ctx, owner, m.ID)
	assert.ErrorIs(t, err, domain.ErrMenuNotFound)
	assert.ErrorIs(t, f.uc.DeleteCategory(ctx, owner, c.ID), domain.ErrCategoryNotFound)
}

// TestInvalidateFailure はキャッシュ無効化の失敗が書き込み結果に影響しないことを検証します。
func TestInvalidateFailure(t *testing.T) {
	f := newFixture()
	f.public.InvalidErr = errBoom
	m := f.seedMenu(t)

	_, err := f.uc.AddCategory(context.Background(), owner, m.ID, "Desserts")
	assert.NoError(t, err)
}

func TestMenuQRCode(t *testing.T) {
	f := newFixture()
	m := f.seedMenu(t)

	png, err := f.uc.MenuQRCode(context.Background(), owner, m.ID, "ka")
	require.NoError(t, err)
	assert.Equal(t, "png:ka:"+m.ID, string(png))
}
