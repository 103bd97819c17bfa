package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"menu_backend/internal/feature/menu/domain"
	"menu_backend/internal/feature/menu/domain/entity"
)

var errBoom = errors.New("boom")

// memMenus はMenuRepositoryのインメモリ実装です。
type memMenus struct {
	menus      map[string]*entity.Menu
	categories map[string]*entity.Category
	items      map[string]*entity.Item
	writes     int
	CountErr   error
}

func newMemMenus() *memMenus {
	return &memMenus{
		menus:      map[string]*entity.Menu{},
		categories: map[string]*entity.Category{},
		items:      map[string]*entity.Item{},
	}
}

func (r *memMenus) ListByUser(_ context.Context, userID uint) ([]entity.Menu, error) {
	var out []entity.Menu
	for _, m := range r.menus {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMenus) CountByUser(_ context.Context, userID uint) (int64, error) {
	if r.CountErr != nil {
		return 0, r.CountErr
	}
	var n int64
	for _, m := range r.menus {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memMenus) Create(_ context.Context, m *entity.Menu) error {
	r.writes++
	cp := *m
	r.menus[m.ID] = &cp
	return nil
}

func (r *memMenus) FindByID(_ context.Context, id string) (*entity.Menu, error) {
	m, ok := r.menus[id]
	if !ok {
		return nil, domain.ErrMenuNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMenus) FindTree(ctx context.Context, id string) (*entity.Menu, error) {
	m, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range r.categories {
		if c.MenuID != id {
			continue
		}
		cc := *c
		for _, it := range r.items {
			if it.CategoryID == c.ID {
				cc.Items = append(cc.Items, *it)
			}
		}
		m.Categories = append(m.Categories, cc)
	}
	sort.Slice(m.Categories, func(i, j int) bool { return m.Categories[i].SortOrder < m.Categories[j].SortOrder })
	return m, nil
}

func (r *memMenus) Update(_ context.Context, m *entity.Menu) error {
	r.writes++
	cp := *m
	r.menus[m.ID] = &cp
	return nil
}

func (r *memMenus) Delete(_ context.Context, id string) error {
	r.writes++
	delete(r.menus, id)
	for cid, c := range r.categories {
		if c.MenuID == id {
			_ = r.DeleteCategory(context.Background(), cid)
		}
	}
	return nil
}

func (r *memMenus) CreateCategory(_ context.Context, c *entity.Category) error {
	r.writes++
	n := 0
	for _, other := range r.categories {
		if other.MenuID == c.MenuID {
			n++
		}
	}
	c.SortOrder = n
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *memMenus) FindCategory(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memMenus) DeleteCategory(_ context.Context, id string) error {
	r.writes++
	delete(r.categories, id)
	for iid, it := range r.items {
		if it.CategoryID == id {
			delete(r.items, iid)
		}
	}
	return nil
}

func (r *memMenus) CreateItem(_ context.Context, it *entity.Item) error {
	r.writes++
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memMenus) FindItem(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memMenus) DeleteItem(_ context.Context, id string) error {
	r.writes++
	delete(r.items, id)
	return nil
}

// spyPublic はPublicMenuReaderのテスト実装で、無効化されたIDを記録します。
type spyPublic struct {
	inner       *memMenus
	invalidated []string
	InvalidErr  error
}

func (p *spyPublic) FindTree(ctx context.Context, id string) (*entity.Menu, error) {
	return p.inner.FindTree(ctx, id)
}

func (p *spyPublic) Invalidate(_ context.Context, id string) error {
	p.invalidated = append(p.invalidated, id)
	return p.InvalidErr
}

type stubQR struct{}

func (stubQR) MenuPNG(locale, menuID string) ([]byte, error) {
	return []byte(fmt.Sprintf("png:%s:%s", locale, menuID)), nil
}

type fixture struct {
	repo   *memMenus
	public *spyPublic
	uc     *MenuUsecase
}

func newFixture() *fixture {
	repo := newMemMenus()
	public := &spyPublic{inner: repo}
	uc := NewMenuUsecase(repo, public, stubQR{}, 0)
	seq := 0
	uc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%02d", seq)
	}
	return &fixture{repo: repo, public: public, uc: uc}
}
