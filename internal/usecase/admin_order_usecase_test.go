package usecase_test

import (
	"context"
	"testing"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
	"ecshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, f *shopFixture, p model.Product, qty int64) usecase.OrderOutput {
	t.Helper()
	f.addToCart(t, f.user.ID, p, qty)
	out, err := f.orders.Checkout(context.Background(), f.user.ID)
	require.NoError(t, err)
	return out
}

func TestAdminUpdateStatus_FollowsTransitionTable(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	ctx := context.Background()
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})

	placed := placeOrder(t, f, f.tea, 1)

	// pending -> shipped は飛ばせない
	_, err := f.admin.UpdateStatus(ctx, admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	for _, st := range []string{"confirmed", "SHIPPED", " delivered "} {
		out, err := f.admin.UpdateStatus(ctx, admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: st})
		require.NoError(t, err, st)
		assert.Equal(t, placed.TotalAmount, out.TotalAmount)
	}

	// deliveredは終端
	_, err = f.admin.UpdateStatus(ctx, admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	// 監査ログは成功した3回分
	logs := f.store.auditLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, logs[0].Action)
	assert.JSONEq(t, `{"status":"pending"}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"status":"confirmed"}`, logs[0].AfterJSON)
}

func TestAdminUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})
	placed := placeOrder(t, f, f.tea, 1)

	out, err := f.admin.UpdateStatus(context.Background(), admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "pending", out.Status)
	assert.Empty(t, f.store.auditLogs())
}

func TestAdminUpdateStatus_CancelRestoresStock(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	ctx := context.Background()
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})

	placed := placeOrder(t, f, f.cup, 2)
	require.Equal(t, int64(1), f.store.stockOf(f.cup.ID))

	_, err := f.admin.UpdateStatus(ctx, admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})
	require.NoError(t, err)
	out, err := f.admin.UpdateStatus(ctx, admin.ID, placed.ID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", out.Status)
	assert.Equal(t, int64(3), f.store.stockOf(f.cup.ID))
}

func TestAdminUpdateStatus_Invalid(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	ctx := context.Background()
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})

	_, err := f.admin.UpdateStatus(ctx, admin.ID, 1, usecase.AdminUpdateOrderStatusInput{Status: "lost"})
	assertErrContains(t, err, "invalid status")

	_, err = f.admin.UpdateStatus(ctx, admin.ID, 9999, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)

	_, err = f.admin.UpdateStatus(ctx, 0, 1, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

// 削除はキャンセルと違って在庫を戻さない
func TestAdminDelete_DoesNotRestoreStock(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	ctx := context.Background()
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})

	placed := placeOrder(t, f, f.tea, 2)
	require.Equal(t, int64(3), f.store.stockOf(f.tea.ID))

	require.NoError(t, f.admin.Delete(ctx, admin.ID, placed.ID))

	assert.Equal(t, int64(3), f.store.stockOf(f.tea.ID))
	orders, orderItems, _ := f.store.counts()
	assert.Zero(t, orders)
	assert.Zero(t, orderItems)

	logs := f.store.auditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionDeleteOrder, logs[0].Action)
	assert.Equal(t, placed.ID, logs[0].ResourceID)

	err := f.admin.Delete(ctx, admin.ID, placed.ID)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestAdminList_Filters(t *testing.T) {
	f := newShopFixture(t, model.StockPolicyAllowNegative)
	ctx := context.Background()
	admin := f.store.seedUser(model.User{Email: "admin@test.com", Role: model.RoleAdmin, IsActive: true})

	first := placeOrder(t, f, f.tea, 1)
	placeOrder(t, f, f.cup, 1)
	f.addToCart(t, f.other.ID, f.cup, 1)
	_, err := f.orders.Checkout(ctx, f.other.ID)
	require.NoError(t, err)

	_, err = f.admin.UpdateStatus(ctx, admin.ID, first.ID, usecase.AdminUpdateOrderStatusInput{Status: "confirmed"})
	require.NoError(t, err)

	all, err := f.admin.List(ctx, repo.AdminOrderListFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.admin.List(ctx, repo.AdminOrderListFilter{Limit: 100, UserID: &f.user.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	confirmed, err := f.admin.List(ctx, repo.AdminOrderListFilter{Limit: 100, Status: model.OrderStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	_, err = f.admin.List(ctx, repo.AdminOrderListFilter{Limit: 100, Status: "lost"})
	assertErrContains(t, err, "invalid status")
}
