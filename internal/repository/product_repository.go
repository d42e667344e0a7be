package repository

import (
	"context"

	"ecshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Skip       int
	Limit      int
	CategoryID *int64
	// name / description の部分一致
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            string
	IncludeInactive bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 行ロック付き取得（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)
	// 出力用に全件（非公開含む）
	ListAll(ctx context.Context) ([]model.Product, error)

	// sku重複はErrConflict
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error)
	SoftDelete(ctx context.Context, id int64) error
}
