package model

import "time"

// 1ユーザーにつきカートは1つ（user_idが一意）
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
