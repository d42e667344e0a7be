package model

import "fmt"

// チェックアウト時の在庫減算ルール
type StockPolicy string

const (
	// 在庫が足りなくても減算する（マイナス在庫を許す）
	StockPolicyAllowNegative StockPolicy = "allow_negative"
	// stock >= qty のときだけ減算し、足りなければ注文を失敗させる
	StockPolicyReject StockPolicy = "reject"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(s) {
	case StockPolicyAllowNegative, StockPolicyReject:
		return StockPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}
