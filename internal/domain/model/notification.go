package model

import "time"

type NotificationType string

const (
	NotificationOrderReady  NotificationType = "order_ready"
	NotificationOrderServed NotificationType = "order_served"
)

// 学生向けのお知らせ
type Notification struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentRef  string           `gorm:"type:varchar(50);not null;index" json:"student_usn"`
	OrderID     string           `gorm:"type:varchar(100);not null" json:"order_id"`
	CanteenName string           `gorm:"type:varchar(255);not null" json:"canteen_name"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Read        bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
}
