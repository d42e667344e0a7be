package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type CartItemRepository interface {
	// 明細一覧（Productもロードする）
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
