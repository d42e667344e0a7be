package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type AdminOrderListFilter struct {
	Skip   int
	Limit  int
	Status model.OrderStatus
	UserID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順（order_date desc）
	ListByUserID(ctx context.Context, userID int64, skip int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	// 遷移チェックはしない。呼び出し側で判定すること
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// 明細ごと物理削除（在庫は戻さない）
	Delete(ctx context.Context, orderID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
	// 管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
