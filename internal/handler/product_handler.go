package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products
type ProductHandler struct {
	uc     *usecase.ProductUsecase
	images ImageStore
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, images ImageStore) *ProductHandler {
	return &ProductHandler{uc: uc, images: images}
}

// PUT /products/:id（nilは変更しない。在庫は /admin/inventory で変える）
type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SKU         *string          `json:"sku"`
	CategoryID  *int64           `json:"category_id"`
	IsActive    *bool            `json:"is_active"`
	ImageURL    *string          `json:"image_url"`
}

// 参照は公開、書き込みはADMINのみ
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	g := e.Group("/products")

	g.GET("", h.list)
	g.GET("/:id", h.detail)

	g.POST("", h.create, guards.Admin...)
	g.PUT("/:id", h.update, guards.Admin...)
	g.DELETE("/:id", h.delete, guards.Admin...)
}

func (h *ProductHandler) list(c echo.Context) error {
	skip, limit, err := parseSkipLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	in := usecase.ListProductsInput{
		Skip:   skip,
		Limit:  limit,
		Search: strings.TrimSpace(c.QueryParam("search")),
		Sort:   c.QueryParam("sort"),
	}

	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "invalid category_id")
		}
		in.CategoryID = &id
	}

	if v := c.QueryParam("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return badRequest(c, "invalid min_price")
		}
		in.MinPrice = &d
	}

	if v := c.QueryParam("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return badRequest(c, "invalid max_price")
		}
		in.MaxPrice = &d
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// multipart: name, description, price, stock, sku, category_id, is_active, image(任意)
func (h *ProductHandler) create(c echo.Context) error {
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		return badRequest(c, "invalid price")
	}

	in := usecase.CreateProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		SKU:         optionalFormValue(c, "sku"),
	}

	if v := c.FormValue("stock"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid stock")
		}
		in.Stock = n
	}

	if v := c.FormValue("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "invalid category_id")
		}
		in.CategoryID = &id
	}

	if v := c.FormValue("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid is_active")
		}
		in.IsActive = &b
	}

	imageURL, err := saveUploadedImage(c, h.images, "products")
	if err != nil {
		return writeError(c, err)
	}
	in.ImageURL = imageURL

	out, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), id, usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 論理削除
func (h *ProductHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
