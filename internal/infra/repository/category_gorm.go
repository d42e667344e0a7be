package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context, skip int, limit int) ([]model.Category, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Category{})
	if err := q.Count(&total).Error; err != nil {
		return []model.Category{}, 0, err
	}

	cats := []model.Category{}
	if err := q.Order("name asc").Offset(skip).Limit(limit).Find(&cats).Error; err != nil {
		return []model.Category{}, 0, err
	}
	return cats, total, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Category{}, translate(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translate(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) Update(ctx context.Context, id int64, patch model.CategoryPatch) (model.Category, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Slug != nil {
		updates["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return model.Category{}, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return model.Category{}, repo.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// 商品は消さずにcategory_idを外す
func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *CategoryGormRepository) CountProducts(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("category_id = ?", id).
		Count(&n).Error
	return n, err
}
