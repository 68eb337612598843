package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type CanteenStatus string

const (
	CanteenStatusActive   CanteenStatus = "active"
	CanteenStatusInactive CanteenStatus = "inactive"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// 営業時間（HH:MM）。Enabledのときだけスケジューラが見る。
type OperatingHours struct {
	Enabled   bool   `gorm:"not null;default:false" json:"enabled"`
	OpenTime  string `gorm:"type:varchar(5);not null;default:'09:00'" json:"open_time"`
	CloseTime string `gorm:"type:varchar(5);not null;default:'17:00'" json:"close_time"`
}

type Canteen struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"canteen_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Email          string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash   string         `gorm:"column:password_hash;not null" json:"-"`
	Status         CanteenStatus  `gorm:"type:varchar(20);not null;default:'inactive';index" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	OperatingHours OperatingHours `gorm:"embedded;embeddedPrefix:operating_hours_" json:"operating_hours"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (c Canteen) IsApproved() bool {
	return c.ApprovalStatus == ApprovalApproved
}

func (c Canteen) IsActive() bool {
	return c.Status == CanteenStatusActive
}

// NormalizeClock は "9:05" / "09:05" を "09:05" にそろえる。不正ならfalse。
func NormalizeClock(s string) (string, bool) {
	var h, m int
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return "", false
	}
	for _, r := range parts[0] + parts[1] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	h, _ = strconv.Atoi(parts[0])
	m, _ = strconv.Atoi(parts[1])
	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}
