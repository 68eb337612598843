package repository

import (
	"context"
	"time"

	"canteen/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page       int
	Limit      int
	Status     string
	CanteenRef string
	From       *time.Time
	To         *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (model.Order, error)
	ListByStudent(ctx context.Context, studentRef string, limit int) ([]model.Order, error)
	ListByCanteen(ctx context.Context, canteenRef string, dayKey string) ([]model.Order, error)

	// 遷移元がfromのいずれかのときだけtoへ更新する（compare-and-set）。
	// 更新できたらtrue。at は ready_at / served_at / cancelled_at に入る。
	Transition(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus, at time.Time) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
