package repository

import (
	"context"
	"strings"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	// name または description
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "name":
		tx = tx.Order("name asc").Order("id asc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	products := []model.Product{}
	if err := tx.Offset(q.Skip).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 同じ商品を同時に注文したときに価格・在庫の読み取りを揃える
func (r *ProductGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// nilでない項目だけ更新
func (r *ProductGormRepository) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.SKU != nil {
		updates["sku"] = *patch.SKU
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return model.Product{}, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return model.Product{}, repo.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// 論理削除（is_active=false）。注文明細から参照されるので行は残す
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
