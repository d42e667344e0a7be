package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// Productもロードする
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
