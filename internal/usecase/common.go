package usecase

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// skip/limitの最低限チェック
func validatePage(skip int, limit int) error {
	if skip < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid skip")
	}
	if limit < 1 || limit > MaxLimit {
		return NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	return nil
}

// 金額は小数2桁の文字列で返す
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// 小数3桁以上やマイナスは不可
func validPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2)) && d.LessThan(decimal.NewFromInt(100000000))
}
