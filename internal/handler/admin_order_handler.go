package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ecshop/internal/domain/model"
	"ecshop/internal/repository"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	admin := e.Group("/admin", guards.Admin...)

	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.DELETE("/orders/:id", h.delete)
}

// ?status=&user_id=&skip=&limit=
func (h *AdminOrderHandler) list(c echo.Context) error {
	skip, limit, err := parseSkipLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	f := repository.AdminOrderListFilter{
		Skip:   skip,
		Limit:  limit,
		Status: model.OrderStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	}

	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "invalid user_id")
		}
		f.UserID = &id
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, id, usecase.AdminUpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 在庫は戻さない
func (h *AdminOrderHandler) delete(c echo.Context) error {
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
