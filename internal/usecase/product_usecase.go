package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
	clock        Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		clock:        clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Skip            int
	Limit           int
	CategoryID      *int64
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            string
	IncludeInactive bool
}

type ProductOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int64     `json:"stock"`
	InStock     bool      `json:"in_stock"`
	SKU         *string   `json:"sku"`
	CategoryID  *int64    `json:"category_id"`
	IsActive    bool      `json:"is_active"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if err := validatePage(in.Skip, in.Limit); err != nil {
		return ProductListOutput{}, err
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "name", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Skip:            in.Skip,
		Limit:           in.Limit,
		CategoryID:      in.CategoryID,
		Search:          strings.TrimSpace(in.Search),
		MinPrice:        in.MinPrice,
		MaxPrice:        in.MaxPrice,
		Sort:            in.Sort,
		IncludeInactive: in.IncludeInactive,
	})
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	out := ProductListOutput{
		Items: make([]ProductOutput, 0, len(items)),
		Total: total,
		Skip:  in.Skip,
		Limit: in.Limit,
	}
	for _, p := range items {
		out.Items = append(out.Items, toProductOutput(p))
	}
	return out, nil
}

// 非公開の商品は404
func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, ErrProductNotFound
	}
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	if !p.IsActive {
		return ProductOutput{}, ErrProductNotFound
	}
	return toProductOutput(p), nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	SKU         *string
	CategoryID  *int64
	IsActive    *bool
	ImageURL    string
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (ProductOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if !validPrice(in.Price) {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	sku, err := normalizeSKU(in.SKU)
	if err != nil {
		return ProductOutput{}, err
	}
	if err := u.ensureCategory(ctx, in.CategoryID); err != nil {
		return ProductOutput{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         sku,
		CategoryID:  in.CategoryID,
		IsActive:    active,
		ImageURL:    in.ImageURL,
	})
	if errors.Is(err, repo.ErrConflict) {
		return ProductOutput{}, ErrSKUConflict
	}
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	return toProductOutput(p), nil
}

// nilの項目は変更しない。在庫は UpdateInventory で変える
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	SKU         *string
	CategoryID  *int64
	IsActive    *bool
	ImageURL    *string
}

func (u *ProductUsecase) Update(ctx context.Context, productID int64, in UpdateProductInput) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	patch := model.ProductPatch{
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		IsActive:    in.IsActive,
		ImageURL:    in.ImageURL,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 255 {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
		}
		patch.Name = &name
	}
	if in.Price != nil && !validPrice(*in.Price) {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.SKU != nil {
		sku, err := normalizeSKU(in.SKU)
		if err != nil {
			return ProductOutput{}, err
		}
		if sku == nil {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sku")
		}
		patch.SKU = sku
	}
	if err := u.ensureCategory(ctx, in.CategoryID); err != nil {
		return ProductOutput{}, err
	}

	p, err := u.productRepo.Update(ctx, productID, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, ErrProductNotFound
	}
	if errors.Is(err, repo.ErrConflict) {
		return ProductOutput{}, ErrSKUConflict
	}
	if err != nil {
		return ProductOutput{}, dbError(err)
	}
	return toProductOutput(p), nil
}

// 論理削除（注文明細から参照されるため物理削除はしない）
func (u *ProductUsecase) Delete(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return ErrUnauthorized
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   auditJSON(map[string]interface{}{"is_active": true}),
			AfterJSON:    auditJSON(map[string]interface{}{"is_active": false}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
}

type UpdateInventoryInput struct {
	Stock  int64
	Reason string
}

// 在庫の現在値を設定し、調整履歴と監査ログを残す
func (u *ProductUsecase) UpdateInventory(ctx context.Context, adminUserID int64, productID int64, in UpdateInventoryInput) (ProductOutput, error) {
	if adminUserID <= 0 {
		return ProductOutput{}, ErrUnauthorized
	}
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Stock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > 255 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	var out ProductOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Inventory().SetStock(ctx, productID, in.Stock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			return dbError(err)
		}

		now := u.clock.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       in.Stock - p.Stock,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   auditJSON(map[string]interface{}{"stock": p.Stock}),
			AfterJSON:    auditJSON(map[string]interface{}{"stock": in.Stock}),
			CreatedAt:    now,
		}); err != nil {
			return dbError(err)
		}

		p.Stock = in.Stock
		out = toProductOutput(p)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

// エクスポート用（非公開も含む全件）
func (u *ProductUsecase) ListForExport(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return products, nil
}

func (u *ProductUsecase) ensureCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if *categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	_, err := u.categoryRepo.FindByID(ctx, *categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

// 空文字はSKUなし扱い
func normalizeSKU(sku *string) (*string, error) {
	if sku == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*sku)
	if s == "" {
		return nil, nil
	}
	if len(s) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid sku")
	}
	return &s, nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Stock:       p.Stock,
		InStock:     p.IsInStock(),
		SKU:         p.SKU,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
