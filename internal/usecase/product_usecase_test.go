package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
	"ecshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productDeps struct {
	products   *ProductRepoMock
	categories *CategoryRepoMock
	inventory  *InventoryRepoMock
	audits     *AuditRepoMock
	tx         *TxManagerMock
	uc         *usecase.ProductUsecase
}

func newProductDeps() *productDeps {
	d := &productDeps{
		products:   new(ProductRepoMock),
		categories: new(CategoryRepoMock),
		inventory:  new(InventoryRepoMock),
		audits:     new(AuditRepoMock),
	}
	d.tx = &TxManagerMock{Repos: &TxReposMock{products: d.products, inventory: d.inventory, audits: d.audits}}
	d.uc = usecase.NewProductUsecase(d.products, d.categories, d.tx, fixedClock{t: testNow})
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductList_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   usecase.ListProductsInput
		want string
	}{
		{name: "negative skip", in: usecase.ListProductsInput{Skip: -1, Limit: 10}, want: "invalid skip"},
		{name: "zero limit", in: usecase.ListProductsInput{Limit: 0}, want: "invalid limit"},
		{name: "limit over max", in: usecase.ListProductsInput{Limit: 101}, want: "invalid limit"},
		{name: "negative min", in: usecase.ListProductsInput{Limit: 10, MinPrice: decPtr("-1")}, want: "min_price"},
		{name: "min over max", in: usecase.ListProductsInput{Limit: 10, MinPrice: decPtr("10"), MaxPrice: decPtr("5")}, want: "min_price must be <= max_price"},
		{name: "unknown sort", in: usecase.ListProductsInput{Limit: 10, Sort: "random"}, want: "invalid sort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newProductDeps()
			_, err := d.uc.List(context.Background(), tt.in)
			assertErrContains(t, err, tt.want)

			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
			d.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestProductList_PassesQuery(t *testing.T) {
	d := newProductDeps()
	cat := int64(2)

	d.products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Skip == 5 && q.Limit == 10 && q.Search == "tea" && *q.CategoryID == 2 && q.Sort == "price_asc" && !q.IncludeInactive
	})).Return([]model.Product{
		{ID: 1, Name: "Green tea", Price: decimal.RequireFromString("3.5"), Stock: 0, IsActive: true},
	}, int64(11), nil)

	out, err := d.uc.List(context.Background(), usecase.ListProductsInput{
		Skip: 5, Limit: 10, Search: " tea ", CategoryID: &cat, Sort: "price_asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "3.50", out.Items[0].Price)
	assert.False(t, out.Items[0].InStock)
	d.products.AssertExpectations(t)
}

func TestProductGet_InactiveIsNotFound(t *testing.T) {
	d := newProductDeps()
	d.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)
	d.products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)

	_, err := d.uc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)

	_, err = d.uc.Get(context.Background(), 2)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductCreate(t *testing.T) {
	d := newProductDeps()
	sku := "  TEA-01 "
	cat := int64(3)

	d.categories.On("FindByID", mock.Anything, int64(3)).Return(model.Category{ID: 3, Name: "Drinks"}, nil)
	d.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Tea" && *p.SKU == "TEA-01" && p.IsActive && p.Stock == 4 && p.Price.Equal(decimal.RequireFromString("9.99"))
	})).Return(model.Product{ID: 10, Name: "Tea", Price: decimal.RequireFromString("9.99"), Stock: 4, IsActive: true}, nil)

	out, err := d.uc.Create(context.Background(), usecase.CreateProductInput{
		Name:       " Tea ",
		Price:      decimal.RequireFromString("9.99"),
		Stock:      4,
		SKU:        &sku,
		CategoryID: &cat,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, "9.99", out.Price)
	d.products.AssertExpectations(t)
}

func TestProductCreate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("price with three decimals", func(t *testing.T) {
		d := newProductDeps()
		_, err := d.uc.Create(ctx, usecase.CreateProductInput{Name: "Tea", Price: decimal.RequireFromString("1.005")})
		assertErrContains(t, err, "invalid price")
	})

	t.Run("negative stock", func(t *testing.T) {
		d := newProductDeps()
		_, err := d.uc.Create(ctx, usecase.CreateProductInput{Name: "Tea", Price: decimal.NewFromInt(1), Stock: -1})
		assertErrContains(t, err, "stock must be >= 0")
	})

	t.Run("unknown category", func(t *testing.T) {
		d := newProductDeps()
		cat := int64(9)
		d.categories.On("FindByID", mock.Anything, int64(9)).Return(model.Category{}, repo.ErrNotFound)

		_, err := d.uc.Create(ctx, usecase.CreateProductInput{Name: "Tea", Price: decimal.NewFromInt(1), CategoryID: &cat})
		assert.ErrorIs(t, err, usecase.ErrCategoryNotFound)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		d := newProductDeps()
		d.products.On("Create", mock.Anything, mock.Anything).Return(model.Product{}, repo.ErrConflict)

		_, err := d.uc.Create(ctx, usecase.CreateProductInput{Name: "Tea", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, usecase.ErrSKUConflict)
	})

	t.Run("db failure is 500", func(t *testing.T) {
		d := newProductDeps()
		cause := errors.New("connection reset")
		d.products.On("Create", mock.Anything, mock.Anything).Return(model.Product{}, cause)

		_, err := d.uc.Create(ctx, usecase.CreateProductInput{Name: "Tea", Price: decimal.NewFromInt(1)})
		he, ok := usecase.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Status)
		assert.Equal(t, "db error", he.Message)
		assert.ErrorIs(t, err, cause)
	})
}

func TestProductUpdate_NotFound(t *testing.T) {
	d := newProductDeps()
	name := "New"
	d.products.On("Update", mock.Anything, int64(5), mock.Anything).Return(model.Product{}, repo.ErrNotFound)

	_, err := d.uc.Update(context.Background(), 5, usecase.UpdateProductInput{Name: &name})
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductDelete_SoftDeleteWithAudit(t *testing.T) {
	d := newProductDeps()
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.products.On("SoftDelete", mock.Anything, int64(7)).Return(nil)
	d.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 && l.Action == model.AuditActionDeleteProduct && l.ResourceID == 7 && l.CreatedAt.Equal(testNow)
	})).Return(nil)

	require.NoError(t, d.uc.Delete(context.Background(), 1, 7))

	d.tx.AssertExpectations(t)
	d.products.AssertExpectations(t)
	d.audits.AssertExpectations(t)
}

func TestProductUpdateInventory_WritesAdjustmentAndAudit(t *testing.T) {
	d := newProductDeps()
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.products.On("FindByIDForUpdate", mock.Anything, int64(3)).
		Return(model.Product{ID: 3, Name: "Tea", Price: decimal.NewFromInt(10), Stock: 4, IsActive: true}, nil)
	d.inventory.On("SetStock", mock.Anything, int64(3), int64(10)).Return(nil)

	var adj model.InventoryAdjustment
	d.inventory.On("CreateAdjustment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { adj = args.Get(1).(model.InventoryAdjustment) }).
		Return(nil)

	var audit model.AuditLog
	d.audits.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { audit = args.Get(1).(model.AuditLog) }).
		Return(nil)

	out, err := d.uc.UpdateInventory(context.Background(), 1, 3, usecase.UpdateInventoryInput{Stock: 10, Reason: " restock "})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Stock)

	assert.Equal(t, int64(6), adj.Delta)
	assert.Equal(t, "restock", adj.Reason)
	assert.Equal(t, int64(1), adj.AdminUserID)

	assert.Equal(t, model.AuditActionUpdateStock, audit.Action)
	assert.JSONEq(t, `{"stock":4}`, audit.BeforeJSON)
	assert.JSONEq(t, `{"stock":10}`, audit.AfterJSON)
}

func TestProductUpdateInventory_Validation(t *testing.T) {
	d := newProductDeps()
	ctx := context.Background()

	_, err := d.uc.UpdateInventory(ctx, 1, 3, usecase.UpdateInventoryInput{Stock: -1, Reason: "x"})
	assertErrContains(t, err, "stock must be >= 0")

	_, err = d.uc.UpdateInventory(ctx, 1, 3, usecase.UpdateInventoryInput{Stock: 1, Reason: "  "})
	assertErrContains(t, err, "reason required")

	_, err = d.uc.UpdateInventory(ctx, 0, 3, usecase.UpdateInventoryInput{Stock: 1, Reason: "x"})
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	d.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestProductUpdateInventory_NotFoundRollsBack(t *testing.T) {
	d := newProductDeps()
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.products.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Product{}, repo.ErrNotFound)

	_, err := d.uc.UpdateInventory(context.Background(), 1, 3, usecase.UpdateInventoryInput{Stock: 1, Reason: "x"})
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	d.inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
}
