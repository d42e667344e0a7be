package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context, skip int, limit int) ([]model.Category, int64, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// name/slug重複はErrConflict
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, id int64, patch model.CategoryPatch) (model.Category, error)
	// 所属商品のcategory_idはNULLになる
	Delete(ctx context.Context, id int64) error
	CountProducts(ctx context.Context, id int64) (int64, error)
}
