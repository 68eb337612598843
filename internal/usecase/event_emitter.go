package usecase

import (
	"context"

	"canteen/internal/domain/model"

	"github.com/sirupsen/logrus"
)

// コミット後にイベントを流す。失敗しても注文処理は成功扱い（ログだけ残す）。
type eventEmitter struct {
	publisher EventPublisher
	idGen     IDGenerator
	log       logrus.FieldLogger
}

func newEventEmitter(publisher EventPublisher, idGen IDGenerator, log logrus.FieldLogger) *eventEmitter {
	return &eventEmitter{publisher: publisher, idGen: idGen, log: log}
}

func (e *eventEmitter) emit(ctx context.Context, o OrderOutput, n model.Notification) {
	if e.publisher == nil {
		return
	}

	event := model.OrderEvent{
		EventID:    e.idGen.NewID(),
		Type:       n.Type,
		OrderID:    o.OrderID,
		CanteenRef: o.CanteenID,
		StudentRef: o.StudentUSN,
		Status:     model.OrderStatus(o.Status),
		Message:    n.Message,
		OccurredAt: n.CreatedAt,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"order_id": o.OrderID,
			"type":     n.Type,
		}).Warn("failed to publish order event")
	}
}
