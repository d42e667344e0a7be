package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
}

// DBに届かなければ503
func (h *HealthHandler) health(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "unreachable"})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
