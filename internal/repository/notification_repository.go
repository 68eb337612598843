package repository

import (
	"context"

	"canteen/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id int64) (model.Notification, error)
	ListByStudent(ctx context.Context, studentRef string) ([]model.Notification, error)
	CountUnread(ctx context.Context, studentRef string) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, studentRef string) error
}
