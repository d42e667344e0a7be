package handler

import (
	"bytes"
	"net/http"

	"ecshop/internal/infra/export"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/inventory と /admin/products/export をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	admin := e.Group("/admin", guards.Admin...)

	admin.PUT("/inventory/:product_id", h.updateInventory)
	admin.GET("/products/export", h.exportProducts)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product_id")
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil || req.Stock == nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.UpdateInventory(c.Request().Context(), adminID, productID, usecase.UpdateInventoryInput{
		Stock:  *req.Stock,
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 非公開も含めた全商品をxlsxで返す
func (h *AdminProductHandler) exportProducts(c echo.Context) error {
	products, err := h.uc.ListForExport(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteProductsXLSX(&buf, products); err != nil {
		return writeError(c, &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "export failed", Err: err})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.ProductsFileName+`"`)
	return c.Blob(http.StatusOK, export.XLSXContentType, buf.Bytes())
}
