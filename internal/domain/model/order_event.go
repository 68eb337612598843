package model

import "time"

// 注文の状態変化を外部へ知らせるイベント
type OrderEvent struct {
	EventID    string           `json:"event_id"`
	Type       NotificationType `json:"type"`
	OrderID    string           `json:"order_id"`
	CanteenRef string           `json:"canteen_id"`
	StudentRef string           `json:"student_usn"`
	Status     OrderStatus      `json:"status"`
	Message    string           `json:"message"`
	OccurredAt time.Time        `json:"occurred_at"`
}
