package repository

import (
	"context"
	"errors"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// carts と cart_items の両方を扱う
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	db := r.db.WithContext(ctx)

	// 同時に作られてもuser_idの一意制約で1つに収まる
	newCart := model.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&newCart).Error; err != nil {
		return model.Cart{}, err
	}

	var cart model.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}

func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Cart{}, cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カート明細を一覧取得（商品の現在値つき）
func (r *CartGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 同一商品は数量加算
func (r *CartGormRepository) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) (model.CartItem, error) {
	if addQty <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}
	db := r.db.WithContext(ctx)

	item := model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  addQty,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err)
	}

	var saved model.CartItem
	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&saved).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return saved, nil
}

// 明細の数量を上書き
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).First(&item, cartItemID).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// cartItemが、そのuserのカートに属しているか
func (r *CartGormRepository) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Table("cart_items").
		Joins("join carts on carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", cartItemID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
