package model

import "time"

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleCanteen Role = "CANTEEN"
	RoleAdmin   Role = "ADMIN"
)

// 管理者アカウント
type Admin struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
