package usecase_test

import (
	"context"
	"strings"
	"testing"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager mock（WithinTxの中で渡すreposを固定）
// =====================

type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

// 使うものだけ差し替える
type TxReposMock struct {
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	audits    repo.AuditLogRepository
}

func (r *TxReposMock) Users() repo.UserRepository           { return nil }
func (r *TxReposMock) Orders() repo.OrderRepository         { return nil }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return nil }
func (r *TxReposMock) Carts() repo.CartRepository           { return nil }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return nil }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.audits }

// =====================
// Repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	args := m.Called(ctx, id, patch)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context, skip int, limit int) ([]model.Category, int64, error) {
	args := m.Called(ctx, skip, limit)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Get(1).(int64), args.Error(2)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

func (m *CategoryRepoMock) Update(ctx context.Context, id int64, patch model.CategoryPatch) (model.Category, error) {
	args := m.Called(ctx, id, patch)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CategoryRepoMock) CountProducts(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *InventoryRepoMock) DecreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used")
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used")
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used")
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
