// Package handler はmenuフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"menu_backend/internal/feature/menu/domain"
	"menu_backend/internal/feature/menu/domain/entity"
	"menu_backend/internal/feature/menu/transport/http/dto"
	"menu_backend/internal/feature/menu/usecase"
	"menu_backend/internal/platform/http/httpx"
	jwtmw "menu_backend/internal/platform/jwt"
	"menu_backend/internal/platform/logger"
)

// MenuUsecase はメニュー操作のユースケースを定義します。
type MenuUsecase interface {
	ListMenus(ctx context.Context, userID uint) ([]entity.Menu, error)
	CountMenus(ctx context.Context, userID uint) (int64, error)
	CreateMenu(ctx context.Context, userID uint, in usecase.MenuInput) (*entity.Menu, error)
	GetMenu(ctx context.Context, userID uint, menuID string) (*entity.Menu, error)
	UpdateMenu(ctx context.Context, userID uint, menuID string, p usecase.MenuPatch) (*entity.Menu, error)
	DeleteMenu(ctx context.Context, userID uint, menuID string) error
	AddCategory(ctx context.Context, userID uint, menuID, name string) (*entity.Category, error)
	DeleteCategory(ctx context.Context, userID uint, categoryID string) error
	AddItem(ctx context.Context, userID uint, categoryID string, in usecase.ItemInput) (*entity.Item, error)
	DeleteItem(ctx context.Context, userID uint, itemID string) error
	PublicMenu(ctx context.Context, menuID string) (*entity.Menu, error)
	MenuQRCode(ctx context.Context, userID uint, menuID, locale string) ([]byte, error)
}

// Error codes returned by the menu endpoints.
const (
	CodeMenuLimitReached = "MENU_LIMIT_REACHED"
	CodeTitleRequired    = "TITLE_REQUIRED"
	CodeNameRequired     = "NAME_REQUIRED"
	CodeInvalidTheme     = "INVALID_THEME"
	CodeInvalidURL       = "INVALID_URL"
	CodeInvalidPrice     = "INVALID_PRICE"
)

var errorMappings = []struct {
	err error
	httpx.Mapping
}{
	{domain.ErrNotOwner, httpx.Mapping{Status: http.StatusForbidden, Code: httpx.CodeUnauthorized}},
	{domain.ErrMenuNotFound, httpx.Mapping{Status: http.StatusNotFound, Code: httpx.CodeNotFound}},
	{domain.ErrCategoryNotFound, httpx.Mapping{Status: http.StatusNotFound, Code: httpx.CodeNotFound}},
	{domain.ErrItemNotFound, httpx.Mapping{Status: http.StatusNotFound, Code: httpx.CodeNotFound}},
	{domain.ErrMenuLimitReached, httpx.Mapping{Status: http.StatusForbidden, Code: CodeMenuLimitReached}},
	{domain.ErrTitleRequired, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeTitleRequired}},
	{domain.ErrNameRequired, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeNameRequired}},
	{domain.ErrInvalidTheme, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeInvalidTheme}},
	{domain.ErrInvalidURL, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeInvalidURL}},
	{domain.ErrInvalidPrice, httpx.Mapping{Status: http.StatusBadRequest, Code: CodeInvalidPrice}},
}

// MenuHandler はメニュー操作のHTTPリクエストを処理します。
type MenuHandler struct {
	menus MenuUsecase
	log   *zap.Logger
}

// NewMenuHandler はMenuHandlerの新しいインスタンスを生成します。
func NewMenuHandler(menus MenuUsecase) *MenuHandler {
	return &MenuHandler{menus: menus, log: logger.WithModule("menu.handler")}
}

func (h *MenuHandler) writeError(c *gin.Context, op string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.String("client_ip", c.ClientIP()), zap.Error(err)}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			h.log.Info("menu request rejected", append(fields, zap.String("code", m.Code))...)
			httpx.WriteError(c, m.Status, m.Code)
			return
		}
	}
	h.log.Error("menu request failed", fields...)
	httpx.WriteInternal(c)
}

func (h *MenuHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpx.WriteError(c, http.StatusBadRequest, httpx.CodeInvalidRequest)
		return false
	}
	return true
}

// caller はベアラーのユーザーIDを返します。AuthRequiredの後段で使う前提です。
func caller(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		httpx.WriteError(c, http.StatusUnauthorized, httpx.CodeUnauthorized)
	}
	return id, ok
}

// pathID はパスパラメータのUUIDを検証します。形式が不正なIDは存在しないものとして404を返します。
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(c, http.StatusNotFound, httpx.CodeNotFound)
		return "", false
	}
	return id, true
}

// List はGET /menusを処理します。
func (h *MenuHandler) List(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	menus, err := h.menus.ListMenus(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "list", err)
		return
	}
	res := make([]dto.MenuRes, 0, len(menus))
	for _, m := range menus {
		res = append(res, dto.NewMenuRes(m))
	}
	c.JSON(http.StatusOK, res)
}

// Count はGET /menus/countを処理します。
func (h *MenuHandler) Count(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	n, err := h.menus.CountMenus(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, "count", err)
		return
	}
	c.JSON(http.StatusOK, dto.CountRes{Count: n})
}

// Create はPOST /menusを処理します。
func (h *MenuHandler) Create(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	var req dto.CreateMenuReq
	if !h.bind(c, &req) {
		return
	}
	m, err := h.menus.CreateMenu(c.Request.Context(), uid, usecase.MenuInput{
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		h.writeError(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMenuRes(*m))
}

// Get はGET /menus/:idを処理します。
func (h *MenuHandler) Get(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	m, err := h.menus.GetMenu(c.Request.Context(), uid, id)
	if err != nil {
		h.writeError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMenuRes(*m))
}

// Update はPATCH /menus/:idを処理します。
func (h *MenuHandler) Update(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateMenuReq
	if !h.bind(c, &req) {
		return
	}
	m, err := h.menus.UpdateMenu(c.Request.Context(), uid, id, usecase.MenuPatch{
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		h.writeError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMenuRes(*m))
}

// Delete はDELETE /menus/:idを処理します。
func (h *MenuHandler) Delete(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.menus.DeleteMenu(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, "delete", err)
		return
	}
	httpx.WriteOK(c)
}

// AddCategory はPOST /menus/:id/categoriesを処理します。
func (h *MenuHandler) AddCategory(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CategoryReq
	if !h.bind(c, &req) {
		return
	}
	cat, err := h.menus.AddCategory(c.Request.Context(), uid, id, req.Name)
	if err != nil {
		h.writeError(c, "add-category", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategoryRes(*cat))
}

// DeleteCategory はDELETE /categories/:idを処理します。
func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.menus.DeleteCategory(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, "delete-category", err)
		return
	}
	httpx.WriteOK(c)
}

// AddItem はPOST /categories/:id/itemsを処理します。
func (h *MenuHandler) AddItem(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ItemReq
	if !h.bind(c, &req) {
		return
	}
	it, err := h.menus.AddItem(c.Request.Context(), uid, id, usecase.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.writeError(c, "add-item", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewItemRes(*it))
}

// DeleteItem はDELETE /items/:idを処理します。
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.menus.DeleteItem(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, "delete-item", err)
		return
	}
	httpx.WriteOK(c)
}

// QRCode はGET /menus/:id/qr?locale=kaを処理し、PNGを返します。
func (h *MenuHandler) QRCode(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	png, err := h.menus.MenuQRCode(c.Request.Context(), uid, id, c.Query("locale"))
	if err != nil {
		h.writeError(c, "qr", err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

// Public はGET /public/menus/:idを処理します。認証は不要です。
func (h *MenuHandler) Public(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	m, err := h.menus.PublicMenu(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "public", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicMenuRes(*m))
}
