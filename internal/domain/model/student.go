package model

import "time"

type Student struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	USN          string    `gorm:"column:usn;type:varchar(50);not null;uniqueIndex" json:"usn"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
