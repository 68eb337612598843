package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/sirupsen/logrus"
)

type OrderOptions struct {
	InitialStatus model.OrderStatus
	Location      *time.Location
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	canteens  repo.CanteenRepository
	allocator *SequenceAllocator
	qr        QRRenderer
	events    *eventEmitter
	clock     Clock
	opts      OrderOptions
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	canteens repo.CanteenRepository,
	allocator *SequenceAllocator,
	qr QRRenderer,
	publisher EventPublisher,
	idGen IDGenerator,
	clock Clock,
	log logrus.FieldLogger,
	opts OrderOptions,
) *OrderUsecase {
	if !opts.InitialStatus.IsInitial() {
		opts.InitialStatus = model.OrderStatusConfirmed
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &OrderUsecase{
		tx:        tx,
		canteens:  canteens,
		allocator: allocator,
		qr:        qr,
		events:    newEventEmitter(publisher, idGen, log),
		clock:     clock,
		opts:      opts,
	}
}

type LineItemInput struct {
	MenuItemID *int64
	Name       string
	UnitPrice  int64
	Quantity   int64
}

type CreateOrderInput struct {
	CanteenRef  string
	Items       []LineItemInput
	TotalAmount int64
}

type OrderItemOutput struct {
	MenuItemID *int64 `json:"menu_item_id,omitempty"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type OrderOutput struct {
	OrderID     string            `json:"order_id"`
	OrderNumber int64             `json:"order_number"`
	CanteenID   string            `json:"canteen_id"`
	StudentUSN  string            `json:"student_usn"`
	Date        string            `json:"date"`
	Status      string            `json:"status"`
	TotalAmount int64             `json:"total_amount"`
	Items       []OrderItemOutput `json:"items"`
	QRPayload   string            `json:"qr_payload,omitempty"`
	QRCode      string            `json:"qr_code,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadyAt     *time.Time        `json:"ready_at,omitempty"`
	ServedAt    *time.Time        `json:"served_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// QRに埋め込む照合用スナップショット
type qrPayload struct {
	OrderID     string            `json:"orderId"`
	CanteenID   string            `json:"canteenId"`
	StudentUSN  string            `json:"studentUSN"`
	TotalAmount int64             `json:"totalAmount"`
	Items       []OrderItemOutput `json:"items"`
}

func FormatOrderID(canteenRef, dayKey string, n int64) string {
	return fmt.Sprintf("%s-%s-%d", canteenRef, dayKey, n)
}

func validateLineItems(items []LineItemInput, total int64) error {
	if len(items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "items are required")
	}

	var sum int64
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, "item name is required")
		}
		if it.Quantity <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if it.UnitPrice < 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		//int64を超える小計・合計は不正
		if it.UnitPrice > 0 && it.Quantity > math.MaxInt64/it.UnitPrice {
			return NewHTTPError(http.StatusBadRequest, "amount too large")
		}
		line := it.UnitPrice * it.Quantity
		if sum > math.MaxInt64-line {
			return NewHTTPError(http.StatusBadRequest, "amount too large")
		}
		sum += line
	}

	if total <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid total_amount")
	}
	//合計は明細から再計算して一致を確認する
	if sum != total {
		return NewHTTPError(http.StatusBadRequest, "total_amount does not match items")
	}
	return nil
}

// CreateOrder は学生の注文を作成する。支払いはなく、作成時点で確定扱い。
func (u *OrderUsecase) CreateOrder(ctx context.Context, studentRef string, in CreateOrderInput) (OrderOutput, error) {
	if studentRef == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	canteenRef := strings.ToUpper(strings.TrimSpace(in.CanteenRef))
	if canteenRef == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "canteen_id is required")
	}
	if err := validateLineItems(in.Items, in.TotalAmount); err != nil {
		return OrderOutput{}, err
	}

	//店舗の存在・承認・営業中チェック
	canteen, err := u.canteens.FindByCode(ctx, canteenRef)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !canteen.IsApproved()) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "canteen not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !canteen.IsActive() {
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "canteen is closed")
	}

	now := u.clock.Now()
	day := DayKey(now, u.opts.Location)

	n, err := u.allocator.AllocateNext(ctx, canteen.Code, day)
	if err != nil {
		return OrderOutput{}, err
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       strings.TrimSpace(it.Name),
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			CreatedAt:  now,
		})
	}

	order := model.Order{
		OrderID:     FormatOrderID(canteen.Code, day, n),
		OrderNumber: n,
		CanteenRef:  canteen.Code,
		StudentRef:  studentRef,
		DayKey:      day,
		Status:      u.opts.InitialStatus,
		TotalAmount: in.TotalAmount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, err := json.Marshal(qrPayload{
		OrderID:     order.OrderID,
		CanteenID:   order.CanteenRef,
		StudentUSN:  order.StudentRef,
		TotalAmount: order.TotalAmount,
		Items:       toItemOutputs(items),
	})
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "qr error")
	}
	order.QRPayload = string(payload)
	if order.QRCode, err = u.qr.Render(order.QRPayload); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "qr error")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, &order); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewHTTPError(http.StatusConflict, "order id conflict")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	return toOrderOutput(order, items), nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, studentRef string) ([]OrderOutput, error) {
	if studentRef == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByStudent(ctx, studentRef, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = withItems(ctx, r, orders)
		return err
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, studentRef string, orderID string) (OrderOutput, error) {
	if studentRef == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人の注文は「存在しない扱い」にする
		if o.StudentRef != studentRef {
			return NewHTTPError(http.StatusNotFound, "order not found")
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
	return out, nil
}

// 店舗の注文一覧。todayOnly なら今日の分だけ。
func (u *OrderUsecase) ListCanteenOrders(ctx context.Context, canteenRef string, todayOnly bool) ([]OrderOutput, error) {
	day := ""
	if todayOnly {
		day = DayKey(u.clock.Now(), u.opts.Location)
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByCanteen(ctx, canteenRef, day)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = withItems(ctx, r, orders)
		return err
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// MarkReady は調理完了を記録し、学生へ通知する。
func (u *OrderUsecase) MarkReady(ctx context.Context, canteenRef string, orderID string) (OrderOutput, error) {
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
		case model.OrderStatusReady:
			return NewHTTPError(http.StatusConflict, "order already marked as ready")
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order is cancelled")
		}
		if !o.Status.CanTransitionTo(model.OrderStatusReady) {
			return NewHTTPError(http.StatusConflict, "order cannot be marked as ready")
		}

		if err := transition(ctx, r, &o, model.OrderStatusReady, now); err != nil {
			return err
		}

		notice = model.Notification{
			StudentRef:  o.StudentRef,
			OrderID:     o.OrderID,
			CanteenName: canteen.Name,
			Message:     fmt.Sprintf("Your order #%d is ready for pickup!", o.OrderNumber),
			Type:        model.NotificationOrderReady,
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

// 店舗の注文を取得する。他店舗の注文なら403。
func loadOwnedOrder(ctx context.Context, r repo.TxRepos, canteenRef, orderID string) (model.Order, error) {
	o, err := r.Orders().FindByOrderID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.CanteenRef != canteenRef {
		return model.Order{}, NewHTTPError(http.StatusForbidden, "this order belongs to a different canteen")
	}
	return o, nil
}

// compare-and-setで状態を進める。同時更新で負けたら409。
func transition(ctx context.Context, r repo.TxRepos, o *model.Order, to model.OrderStatus, at time.Time) error {
	ok, err := r.Orders().Transition(ctx, o.OrderID, model.TransitionSources(to), to, at)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusConflict, "order status changed, reload and try again")
	}

	o.Status = to
	o.UpdatedAt = at
	switch to {
	case model.OrderStatusReady:
		o.ReadyAt = &at
	case model.OrderStatusServed:
		o.ServedAt = &at
	case model.OrderStatusCancelled:
		o.CancelledAt = &at
	}
	return nil
}

// 明細は1クエリでまとめて読む
func withItems(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, byOrder[o.ID]))
	}
	return outs, nil
}

func toItemOutputs(items []model.OrderItem) []OrderItemOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	return outItems
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		CanteenID:   o.CanteenRef,
		StudentUSN:  o.StudentRef,
		Date:        o.DayKey,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Items:       toItemOutputs(items),
		QRPayload:   o.QRPayload,
		QRCode:      o.QRCode,
		CreatedAt:   o.CreatedAt,
		ReadyAt:     o.ReadyAt,
		ServedAt:    o.ServedAt,
		CancelledAt: o.CancelledAt,
	}
}
