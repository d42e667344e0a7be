package repository

import (
	"context"

	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

// 1トランザクション分のrepository束
type txReposGorm struct {
	users      *UserGormRepository
	orders     *OrderGormRepository
	orderItems *OrderItemGormRepository
	carts      *CartGormRepository
	inventory  *InventoryGormRepository
	products   *ProductGormRepository
	auditLogs  *AuditLogGormRepository
}

// 全repoを同じ*gorm.DB（tx）で作る
func newTxRepos(tx *gorm.DB) *txReposGorm {
	return &txReposGorm{
		users:      NewUserGormRepository(tx),
		orders:     NewOrderGormRepository(tx),
		orderItems: NewOrderItemGormRepository(tx),
		carts:      NewCartGormRepository(tx),
		inventory:  NewInventoryGormRepository(tx),
		products:   NewProductGormRepository(tx),
		auditLogs:  NewAuditLogGormRepository(tx),
	}
}

func (r *txReposGorm) Users() repo.UserRepository           { return r.users }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return r.carts }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

var _ repo.TxRepos = (*txReposGorm)(nil)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返したらロールバック
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
}
