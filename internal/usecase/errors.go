package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// usecaseが返すエラー。handlerはStatus/Messageをそのまま返す
type HTTPError struct {
	Status  int
	Message string
	// ログ用の原因（レスポンスには出さない）
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// DB失敗は必ず500で返す
func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
}

// errors.Isで判定できるように共有する
var (
	ErrUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = NewHTTPError(http.StatusForbidden, "forbidden")

	ErrUserNotFound     = NewHTTPError(http.StatusNotFound, "user not found")
	ErrProductNotFound  = NewHTTPError(http.StatusNotFound, "product not found")
	ErrCategoryNotFound = NewHTTPError(http.StatusNotFound, "category not found")
	ErrItemNotFound     = NewHTTPError(http.StatusNotFound, "cart item not found")
	ErrOrderNotFound    = NewHTTPError(http.StatusNotFound, "order not found")

	ErrSKUConflict      = NewHTTPError(http.StatusConflict, "sku already exists")
	ErrCategoryConflict = NewHTTPError(http.StatusConflict, "category already exists")

	ErrEmptyCart           = NewHTTPError(http.StatusBadRequest, "cart is empty")
	ErrInsufficientStock   = NewHTTPError(http.StatusConflict, "insufficient stock")
	ErrOrderNotCancellable = NewHTTPError(http.StatusConflict, "order cannot be cancelled")
	ErrInvalidTransition   = NewHTTPError(http.StatusConflict, "invalid status transition")
	ErrWrongPassword       = NewHTTPError(http.StatusBadRequest, "incorrect current password")
)
