package model

import "time"

// カートの明細。価格は持たず、表示のたびに商品の現在価格を使う
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:ux_cart_items_cart_product" json:"cart_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_cart_items_cart_product;index" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
