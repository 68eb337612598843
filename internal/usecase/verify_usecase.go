package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/sirupsen/logrus"
)

var bareNumberPattern = regexp.MustCompile(`^\d+$`)

// VerifyUsecase は受け取り時の照合（番号 or 注文ID）を行い served にする。
type VerifyUsecase struct {
	tx       repo.TransactionManager
	canteens repo.CanteenRepository
	events   *eventEmitter
	clock    Clock
	loc      *time.Location
}

func NewVerifyUsecase(
	tx repo.TransactionManager,
	canteens repo.CanteenRepository,
	publisher EventPublisher,
	idGen IDGenerator,
	clock Clock,
	log logrus.FieldLogger,
	loc *time.Location,
) *VerifyUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &VerifyUsecase{
		tx:       tx,
		canteens: canteens,
		events:   newEventEmitter(publisher, idGen, log),
		clock:    clock,
		loc:      loc,
	}
}

// ResolveOrderID は照合用の入力を注文IDへ変換する。
// 数字だけなら今日の番号として扱うので、前日以前の注文は注文IDでしか引けない。
func ResolveOrderID(canteenRef, identifier, today string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", NewHTTPError(http.StatusBadRequest, "identifier is required")
	}
	if !bareNumberPattern.MatchString(identifier) {
		return identifier, nil
	}

	//"03" も 3 番として扱う
	n, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil || n <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid order number")
	}
	return FormatOrderID(canteenRef, today, n), nil
}

// Verify は今日の日付で Resolve する。
func (u *VerifyUsecase) Verify(ctx context.Context, canteenRef string, identifier string) (OrderOutput, error) {
	return u.Resolve(ctx, canteenRef, identifier, DayKey(u.clock.Now(), u.loc))
}

func (u *VerifyUsecase) Resolve(ctx context.Context, canteenRef string, identifier string, today string) (OrderOutput, error) {
	orderID, err := ResolveOrderID(canteenRef, identifier, today)
	if err != nil {
		return OrderOutput{}, err
	}

	canteen, err := u.canteens.FindByCode(ctx, canteenRef)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "canteen not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()
	var out OrderOutput
	var notice model.Notification

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := loadOwnedOrder(ctx, r, canteen.Code, orderID)
		if err != nil {
			return err
		}

		switch o.Status {
		case model.OrderStatusServed:
			return NewHTTPError(http.StatusConflict, "order already served")
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order is cancelled")
		}

		if err := transition(ctx, r, &o, model.OrderStatusServed, now); err != nil {
			return err
		}

		notice = model.Notification{
			StudentRef:  o.StudentRef,
			OrderID:     o.OrderID,
			CanteenName: canteen.Name,
			Message:     fmt.Sprintf("Your order #%d has been served. Enjoy your meal!", o.OrderNumber),
			Type:        model.NotificationOrderServed,
			CreatedAt:   now,
		}
		if err := r.Notifications().Create(ctx, &notice); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.events.emit(ctx, out, notice)
	return out, nil
}
