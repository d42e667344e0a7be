package model

import "time"

// 商品カテゴリ。nameとslugは一意
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	ImageURL    string    `gorm:"type:varchar(255);not null;default:''" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	ImageURL    *string
}
