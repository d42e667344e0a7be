package handler

import (
	"net/http"
	"strconv"
	"time"

	"ecshop/internal/domain/model"
	"ecshop/internal/repository"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/audit-logs
type AdminAuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(e *echo.Echo, guards RouteGuards) {
	admin := e.Group("/admin", guards.Admin...)
	admin.GET("/audit-logs", h.list)
}

// ?actor_user_id=&action=&resource_type=&resource_id=&from=&to=&skip=&limit=（from/toはRFC3339）
func (h *AdminAuditHandler) list(c echo.Context) error {
	skip, limit, err := parseSkipLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	f := repository.AuditLogFilter{Offset: skip, Limit: limit}

	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_user_id")
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		f.ResourceID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		f.CreatedTo = &t
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
