package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 遷移表。キーが遷移先、値が遷移元として許される状態。
// ready を持たない旧モデルの confirmed -> served もここに含まれる。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusReady:     {OrderStatusPending, OrderStatusConfirmed},
	OrderStatusServed:    {OrderStatusPending, OrderStatusConfirmed, OrderStatusReady},
	OrderStatusCancelled: {OrderStatusPending, OrderStatusConfirmed, OrderStatusReady},
}

// 作成時に使える初期状態か
func (s OrderStatus) IsInitial() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// served / cancelled は終端
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusServed || s == OrderStatusCancelled
}

// toへ遷移できる元の状態一覧
func TransitionSources(to OrderStatus) []OrderStatus {
	return orderTransitions[to]
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, from := range orderTransitions[to] {
		if from == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     string      `gorm:"type:varchar(100);not null;uniqueIndex" json:"order_id"`
	OrderNumber int64       `gorm:"not null" json:"order_number"`
	CanteenRef  string      `gorm:"type:varchar(50);not null;index:idx_orders_canteen_day,priority:1" json:"canteen_id"`
	StudentRef  string      `gorm:"type:varchar(50);not null;index" json:"student_usn"`
	DayKey      string      `gorm:"type:varchar(8);not null;index:idx_orders_canteen_day,priority:2" json:"date"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount int64       `gorm:"not null" json:"total_amount"`
	// QRペイロード（オフライン照合用のJSON）と、その画像（data URL）
	QRPayload   string      `gorm:"type:text" json:"qr_payload"`
	QRCode      string      `gorm:"type:text" json:"qr_code"`
	Items       []OrderItem `gorm:"-" json:"items"`
	ReadyAt     *time.Time  `json:"ready_at,omitempty"`
	ServedAt    *time.Time  `json:"served_at,omitempty"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
