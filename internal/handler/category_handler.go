package handler

import (
	"net/http"

	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /categories
type CategoryHandler struct {
	uc     *usecase.CategoryUsecase
	images ImageStore
}

func NewCategoryHandler(uc *usecase.CategoryUsecase, images ImageStore) *CategoryHandler {
	return &CategoryHandler{uc: uc, images: images}
}

// 参照は公開、作成・更新・削除はADMINのみ
func (h *CategoryHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	g := e.Group("/categories")

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/count", h.count)

	g.POST("", h.create, guards.Admin...)
	g.PUT("/:id", h.update, guards.Admin...)
	g.DELETE("/:id", h.delete, guards.Admin...)
}

func (h *CategoryHandler) list(c echo.Context) error {
	skip, limit, err := parseSkipLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), skip, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) count(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.CountProducts(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// multipart: name, description, image(任意)
func (h *CategoryHandler) create(c echo.Context) error {
	imageURL, err := saveUploadedImage(c, h.images, "categories")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.CreateCategoryInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		ImageURL:    imageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CategoryHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	in := usecase.UpdateCategoryInput{
		Name:        optionalFormValue(c, "name"),
		Description: optionalFormValue(c, "description"),
	}

	imageURL, err := saveUploadedImage(c, h.images, "categories")
	if err != nil {
		return writeError(c, err)
	}
	if imageURL != "" {
		in.ImageURL = &imageURL
	}

	out, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
