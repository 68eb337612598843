package usecase

import (
	"context"
	"time"

	"canteen/internal/domain/model"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// QRペイロードを画像（data URL）にする
type QRRenderer interface {
	Render(payload string) (string, error)
}

// 注文イベントを外へ流す（RabbitMQ など）
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// 日付キー（YYYYMMDD）
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("20060102")
}
