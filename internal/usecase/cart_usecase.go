package usecase

import (
	"context"
	"errors"
	"net/http"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// 価格は商品の現在価格
type CartItemOutput struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	ItemTotal string `json:"item_total"`
	InStock   bool   `json:"in_stock"`
}

type CartOutput struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id"`
	Items       []CartItemOutput `json:"items"`
	TotalItems  int64            `json:"total_items"`
	TotalAmount string           `json:"total_amount"`
}

type CartSummaryOutput struct {
	CartID      int64  `json:"cart_id"`
	ItemsCount  int    `json:"items_count"`
	TotalItems  int64  `json:"total_items"`
	TotalAmount string `json:"total_amount"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, ErrUnauthorized
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return u.buildCartOutput(ctx, cart)
}

// カートは作らずに集計だけ返す
func (u *CartUsecase) Summary(ctx context.Context, userID int64) (CartSummaryOutput, error) {
	if userID <= 0 {
		return CartSummaryOutput{}, ErrUnauthorized
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartSummaryOutput{TotalAmount: money(decimal.Zero)}, nil
	}
	if err != nil {
		return CartSummaryOutput{}, dbError(err)
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartSummaryOutput{}, dbError(err)
	}
	totalItems, totalAmount := cartTotals(items)

	return CartSummaryOutput{
		CartID:      cart.ID,
		ItemsCount:  len(items),
		TotalItems:  totalItems,
		TotalAmount: money(totalAmount),
	}, nil
}

// カートに追加（同一商品は数量加算）。在庫はここでは見ない
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, ErrUnauthorized
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, ErrProductNotFound
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	if !p.IsActive {
		return CartOutput{}, ErrProductNotFound
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	if _, err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, p.ID, in.Quantity); err != nil {
		return CartOutput{}, dbError(err)
	}

	return u.buildCartOutput(ctx, cart)
}

// 数量を上書き
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, cartItemID int64, qty int64) (CartOutput, error) {
	if qty < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if _, err := u.ownedItem(ctx, userID, cartItemID); err != nil {
		return CartOutput{}, err
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, ErrItemNotFound
		}
		return CartOutput{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) error {
	if _, err := u.ownedItem(ctx, userID, cartItemID); err != nil {
		return err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrItemNotFound
		}
		return dbError(err)
	}
	return nil
}

func (u *CartUsecase) IncreaseItem(ctx context.Context, userID int64, cartItemID int64, by int64) (CartOutput, error) {
	if by < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, item.Quantity+by); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, ErrItemNotFound
		}
		return CartOutput{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

// 0以下になったら明細を消す
func (u *CartUsecase) DecreaseItem(ctx context.Context, userID int64, cartItemID int64, by int64) (CartOutput, error) {
	if by < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartOutput{}, err
	}

	newQty := item.Quantity - by
	if newQty <= 0 {
		err = u.cartItemRepo.DeleteByID(ctx, cartItemID)
	} else {
		err = u.cartItemRepo.UpdateQuantity(ctx, cartItemID, newQty)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, ErrItemNotFound
		}
		return CartOutput{}, dbError(err)
	}
	return u.GetCart(ctx, userID)
}

// カートが無ければfalse
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrUnauthorized
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dbError(err)
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return false, dbError(err)
	}
	return true, nil
}

// 明細の存在と持ち主を確認
func (u *CartUsecase) ownedItem(ctx context.Context, userID int64, cartItemID int64) (model.CartItem, error) {
	if userID <= 0 {
		return model.CartItem{}, ErrUnauthorized
	}
	if cartItemID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, ErrItemNotFound
	}
	if err != nil {
		return model.CartItem{}, dbError(err)
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return model.CartItem{}, dbError(err)
	}
	if !owned {
		return model.CartItem{}, ErrForbidden
	}
	return item, nil
}

func (u *CartUsecase) buildCartOutput(ctx context.Context, cart model.Cart) (CartOutput, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	totalItems, totalAmount := cartTotals(items)

	out := CartOutput{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       make([]CartItemOutput, 0, len(items)),
		TotalItems:  totalItems,
		TotalAmount: money(totalAmount),
	}
	for _, it := range items {
		row := CartItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: money(decimal.Zero),
			ItemTotal: money(decimal.Zero),
		}
		if it.Product != nil {
			row.Name = it.Product.Name
			row.UnitPrice = money(it.Product.Price)
			row.ItemTotal = money(it.Product.Price.Mul(decimal.NewFromInt(it.Quantity)))
			row.InStock = it.Product.Stock >= it.Quantity
		}
		out.Items = append(out.Items, row)
	}
	return out, nil
}

// カート表示用の合計。商品の「今の」価格で毎回計算する（注文の合計とは別物）
func cartTotals(items []model.CartItem) (int64, decimal.Decimal) {
	var totalItems int64
	totalAmount := decimal.Zero
	for _, it := range items {
		totalItems += it.Quantity
		if it.Product == nil {
			continue
		}
		totalAmount = totalAmount.Add(it.Product.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return totalItems, totalAmount.Round(2)
}
