package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

// products.stockの更新と調整履歴
type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// stockを1文で書き換え、対象行数を返す。minStock>=0なら stock >= minStock の行だけ
func (r *InventoryGormRepository) updateStock(ctx context.Context, productID int64, value interface{}, minStock int64) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID)
	if minStock >= 0 {
		q = q.Where("stock >= ?", minStock)
	}
	res := q.Update("stock", value)
	return res.RowsAffected, res.Error
}

func mustHit(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 管理画面からの在庫数設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return mustHit(r.updateStock(ctx, productID, newStock, -1))
}

// allow_negative用。マイナスもそのまま
func (r *InventoryGormRepository) DecreaseStock(ctx context.Context, productID int64, qty int64) error {
	return mustHit(r.updateStock(ctx, productID, gorm.Expr("stock - ?", qty), -1))
}

// reject用。足りなければ(false, nil)
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	n, err := r.updateStock(ctx, productID, gorm.Expr("stock - ?", qty), qty)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// キャンセル時の戻し
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return mustHit(r.updateStock(ctx, productID, gorm.Expr("stock + ?", qty), -1))
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
