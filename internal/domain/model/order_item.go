package model

import "time"

// 注文時点の名前・単価のスナップショット
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID    int64     `gorm:"not null;index" json:"-"`
	MenuItemID *int64    `json:"menu_item_id,omitempty"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice  int64     `gorm:"not null" json:"price"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	Position   int       `gorm:"not null" json:"-"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
