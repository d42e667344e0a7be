package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(100);not null;default:''" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null;default:''" json:"last_name"`
	Phone        string     `gorm:"type:varchar(30);not null;default:''" json:"phone"`
	Address      string     `gorm:"type:text;not null;default:''" json:"address"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// プロフィール更新。nilの項目は変更しない
type UserPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Address == nil
}
