package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ecshop/internal/usecase"
	auth "ecshop/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Success { message: string }
type SuccessResponse struct {
	Message string `json:"message"`
}

// 保護ルートに付けるミドルウェアの組み合わせ
type RouteGuards struct {
	User  []echo.MiddlewareFunc // JWT + token_version
	Admin []echo.MiddlewareFunc // User + ADMIN
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		// 原因はログにだけ出す
		zerolog.Ctx(c.Request().Context()).Error().Err(err).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

func errorStatus(err error) (int, string) {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status, he.Message
	}

	switch {
	case errors.Is(err, auth.ErrInvalidEmailFormat),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidProfile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrUserInactive):
		return http.StatusForbidden, err.Error()
	}

	//500
	return http.StatusInternalServerError, "internal error"
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// skip（default 0）/ limit（default 100）
func parseSkipLimit(c echo.Context) (int, int, error) {
	skip := 0
	if v := c.QueryParam("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid skip")
		}
		skip = n
	}

	limit := usecase.DefaultLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	return skip, limit, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
