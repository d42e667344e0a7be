package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// is_active=falseが論理削除
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	SKU         *string         `gorm:"column:sku;type:varchar(100);uniqueIndex" json:"sku"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	ImageURL    string          `gorm:"type:varchar(255);not null;default:''" json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p Product) IsInStock() bool {
	return p.Stock > 0
}

// 商品の部分更新。nilの項目は変更しない
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	SKU         *string
	CategoryID  *int64
	IsActive    *bool
	ImageURL    *string
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.SKU == nil &&
		p.CategoryID == nil && p.IsActive == nil && p.ImageURL == nil
}
