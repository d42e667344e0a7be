package handler

import (
	"context"
	"net/http"
	"strconv"

	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type clearCartResponse struct {
	Message string `json:"message"`
	Cleared bool   `json:"cleared"`
}

// /cart, /cart/items/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	g := e.Group("/cart", guards.User...)

	g.GET("", h.getCart)
	g.GET("/summary", h.summary)
	g.DELETE("", h.clear)

	g.POST("/items", h.addItem)
	g.PUT("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.removeItem)
	g.POST("/items/:id/increase", h.increaseItem)
	g.POST("/items/:id/decrease", h.decreaseItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) summary(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Summary(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), userID, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *CartHandler) increaseItem(c echo.Context) error {
	return h.stepItem(c, h.uc.IncreaseItem)
}

func (h *CartHandler) decreaseItem(c echo.Context) error {
	return h.stepItem(c, h.uc.DecreaseItem)
}

type stepFunc func(ctx context.Context, userID int64, itemID int64, by int64) (usecase.CartOutput, error)

// ?amount=n（default 1）
func (h *CartHandler) stepItem(c echo.Context, step stepFunc) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	amount := int64(1)
	if v := c.QueryParam("amount"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid amount")
		}
		amount = n
	}

	out, err := step(c.Request().Context(), userID, itemID, amount)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	cleared, err := h.uc.Clear(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	msg := "cart cleared"
	if !cleared {
		msg = "cart not found"
	}
	return c.JSON(http.StatusOK, clearCartResponse{Message: msg, Cleared: cleared})
}
