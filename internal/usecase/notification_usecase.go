package usecase

import (
	"context"
	"errors"
	"net/http"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"
)

type NotificationUsecase struct {
	notifications repo.NotificationRepository
}

func NewNotificationUsecase(notifications repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

func (u *NotificationUsecase) List(ctx context.Context, studentRef string) ([]model.Notification, error) {
	items, err := u.notifications.ListByStudent(ctx, studentRef)
	if err != nil {
		return []model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, studentRef string) (int64, error) {
	n, err := u.notifications.CountUnread(ctx, studentRef)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, studentRef string, id int64) (model.Notification, error) {
	n, err := u.notifications.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Notification{}, NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if n.StudentRef != studentRef {
		return model.Notification{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.notifications.MarkRead(ctx, id); err != nil {
		return model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	n.Read = true
	return n, nil
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, studentRef string) error {
	if err := u.notifications.MarkAllRead(ctx, studentRef); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
