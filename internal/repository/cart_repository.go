package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る。何度呼んでも同じカート
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細だけ全削除（カート自体は残す）
	Clear(ctx context.Context, cartID int64) error
	// カートごと削除（退会時）
	Delete(ctx context.Context, cartID int64) error
}
