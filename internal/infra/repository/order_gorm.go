package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, translate(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, skip int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	items := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_date desc").
		Order("id desc").
		Limit(limit).
		Offset(skip).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	// 明細はOrderItemRepositoryで入れる
	if err := r.db.WithContext(ctx).Omit("Items").Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}

	res := db.Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	db := r.db.WithContext(ctx)
	sub := db.Model(&model.Order{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("order_id IN (?)", sub).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.Order{}).Error
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	items := []model.Order{}
	if err := q.Order("order_date desc").Order("id desc").Limit(f.Limit).Offset(f.Skip).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}
