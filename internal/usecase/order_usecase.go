package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	stockPolicy model.StockPolicy
	clock       Clock
}

func NewOrderUsecase(tx repo.TransactionManager, stockPolicy model.StockPolicy, clock Clock) *OrderUsecase {
	if stockPolicy == "" {
		stockPolicy = model.StockPolicyAllowNegative
	}
	return &OrderUsecase{tx: tx, stockPolicy: stockPolicy, clock: clock}
}

type OrderItemOutput struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Status      string            `json:"status"`
	TotalAmount string            `json:"total_amount"`
	OrderDate   time.Time         `json:"order_date"`
	ItemsCount  int               `json:"items_count"`
	Items       []OrderItemOutput `json:"items"`
}

// カートから注文を作る。合計計算・注文作成・在庫減算・カートクリアは1トランザクション
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return dbError(err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return dbError(err)
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		lines, total, err := priceOrderLines(ctx, r.Products(), cartItems)
		if err != nil {
			return err
		}

		now := u.clock.Now()
		order := model.Order{
			UserID:      userID,
			Status:      model.OrderStatusPending,
			TotalAmount: total,
			OrderDate:   now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return dbError(err)
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, lines); err != nil {
			return dbError(err)
		}

		for _, l := range lines {
			if err := u.takeStock(ctx, r.Inventory(), l.ProductID, l.Quantity); err != nil {
				return err
			}
		}

		// カート本体は残して明細だけ消す
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return dbError(err)
		}

		for i := range lines {
			lines[i].OrderID = orderID
		}
		out = toOrderOutput(order, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) takeStock(ctx context.Context, inv repo.InventoryRepository, productID int64, qty int64) error {
	switch u.stockPolicy {
	case model.StockPolicyReject:
		ok, err := inv.DecreaseStockIfEnough(ctx, productID, qty)
		if err != nil {
			return dbError(err)
		}
		if !ok {
			return ErrInsufficientStock
		}
		return nil
	default:
		// 在庫が足りなくても注文は通す（マイナス在庫になり得る）
		if err := inv.DecreaseStock(ctx, productID, qty); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return dbError(err)
		}
		return nil
	}
}

// 注文明細と合計を作る。単価は注文時点の価格で固定される
func priceOrderLines(ctx context.Context, products repo.ProductRepository, cartItems []model.CartItem) ([]model.OrderItem, decimal.Decimal, error) {
	lines := make([]model.OrderItem, 0, len(cartItems))
	total := decimal.Zero

	for _, ci := range cartItems {
		p, err := products.FindByIDForUpdate(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, decimal.Zero, ErrProductNotFound
		}
		if err != nil {
			return nil, decimal.Zero, dbError(err)
		}

		unit := p.Price.Round(2)
		subtotal := unit.Mul(decimal.NewFromInt(ci.Quantity)).Round(2)
		lines = append(lines, model.OrderItem{
			ProductID: ci.ProductID,
			Product:   &p,
			Quantity:  ci.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return lines, total.Round(2), nil
}

// 新しい順
func (u *OrderUsecase) List(ctx context.Context, userID int64, skip int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, ErrUnauthorized
	}
	if err := validatePage(skip, limit); err != nil {
		return []OrderOutput{}, err
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, skip, limit)
		if err != nil {
			return dbError(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) Get(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// pending/confirmedだけキャンセル可。在庫を戻してcancelledにする
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := findOwnedOrder(ctx, r, userID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.IsCancellable() {
			return ErrOrderNotCancellable
		}

		items, err := restoreStock(ctx, r, orderID)
		if err != nil {
			return err
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return dbError(err)
		}

		o.Status = model.OrderStatusCancelled
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 他人の注文は「存在しない扱い」にする
func findOwnedOrder(ctx context.Context, r repo.TxRepos, userID int64, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, dbError(err)
	}
	if o.UserID != userID {
		return model.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// 注文明細の数量を在庫に戻す
func restoreStock(ctx context.Context, r repo.TxRepos, orderID int64) ([]model.OrderItem, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, dbError(err)
	}
	for _, it := range items {
		if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			return nil, dbError(err)
		}
	}
	return items, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		row := OrderItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Subtotal:  money(it.Subtotal),
		}
		if it.Product != nil {
			row.Name = it.Product.Name
		}
		outItems = append(outItems, row)
	}

	return OrderOutput{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: money(o.TotalAmount),
		OrderDate:   o.OrderDate,
		ItemsCount:  len(items),
		Items:       outItems,
	}
}
