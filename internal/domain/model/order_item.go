package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成後は更新しない（unit_priceは注文時点の価格）
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
