package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Clock / IDGenerator / QR
// =====================

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("evt-%d", g.n)
}

type fakeQR struct{ err error }

func (q fakeQR) Render(payload string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	return "data:image/png;base64,QR", nil
}

// 発行されたイベントを記録する
type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, event model.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// =====================
// in-memory store（WithinTx中は排他、エラー時は巻き戻す）
// =====================

type memStore struct {
	mu            sync.Mutex
	nextID        int64
	orders        map[string]model.Order
	items         map[int64][]model.OrderItem
	notifications []model.Notification
	auditLogs     []model.AuditLog

	// 次のTransitionの直前に状態を書き換える（同時更新の再現用）
	raceStatus model.OrderStatus
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[string]model.Order{},
		items:  map[int64][]model.OrderItem{},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordersSnap := make(map[string]model.Order, len(s.orders))
	for k, v := range s.orders {
		ordersSnap[k] = v
	}
	itemsSnap := make(map[int64][]model.OrderItem, len(s.items))
	for k, v := range s.items {
		itemsSnap[k] = v
	}
	notifSnap := append([]model.Notification(nil), s.notifications...)
	auditSnap := append([]model.AuditLog(nil), s.auditLogs...)
	nextSnap := s.nextID

	if err := fn(memRepos{s}); err != nil {
		s.orders, s.items, s.notifications, s.auditLogs, s.nextID = ordersSnap, itemsSnap, notifSnap, auditSnap, nextSnap
		return err
	}
	return nil
}

// テストからの直接参照用
func (s *memStore) order(id string) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) put(o model.Order, items ...model.OrderItem) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	s.orders[o.OrderID] = o
	s.items[o.ID] = items
	return o
}

func (s *memStore) notificationsFor(studentRef string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.StudentRef == studentRef {
			out = append(out, n)
		}
	}
	return out
}

type memRepos struct{ s *memStore }

func (r memRepos) Orders() repo.OrderRepository               { return memOrders{r.s} }
func (r memRepos) OrderItems() repo.OrderItemRepository       { return memOrderItems{r.s} }
func (r memRepos) Notifications() repo.NotificationRepository { return memNotifications{r.s} }
func (r memRepos) AuditLogs() repo.AuditLogRepository         { return memAuditLogs{r.s} }

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, o *model.Order) error {
	if _, ok := r.s.orders[o.OrderID]; ok {
		return repo.ErrDuplicate
	}
	r.s.nextID++
	o.ID = r.s.nextID
	r.s.orders[o.OrderID] = *o
	return nil
}

func (r memOrders) FindByOrderID(ctx context.Context, orderID string) (model.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) sorted(keep func(model.Order) bool) []model.Order {
	out := []model.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memOrders) ListByStudent(ctx context.Context, studentRef string, limit int) ([]model.Order, error) {
	out := r.sorted(func(o model.Order) bool { return o.StudentRef == studentRef })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrders) ListByCanteen(ctx context.Context, canteenRef string, dayKey string) ([]model.Order, error) {
	return r.sorted(func(o model.Order) bool {
		return o.CanteenRef == canteenRef && (dayKey == "" || o.DayKey == dayKey)
	}), nil
}

func (r memOrders) Transition(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus, at time.Time) (bool, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil
	}
	if r.s.raceStatus != "" {
		o.Status = r.s.raceStatus
		r.s.raceStatus = ""
	}
	allowed := false
	for _, f := range from {
		if o.Status == f {
			allowed = true
		}
	}
	if !allowed {
		r.s.orders[orderID] = o
		return false, nil
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
	r.s.orders[orderID] = o
	return true, nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	all := r.sorted(func(o model.Order) bool {
		if f.Status != "" && string(o.Status) != f.Status {
			return false
		}
		return f.CanteenRef == "" || o.CanteenRef == f.CanteenRef
	})
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type memOrderItems struct{ s *memStore }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	cp := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.OrderID = orderID
		it.Position = i
		cp[i] = it
	}
	r.s.items[orderID] = cp
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return r.s.items[orderID], nil
}

func (r memOrderItems) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	out := make(map[int64][]model.OrderItem, len(orderIDs))
	for _, id := range orderIDs {
		if items, ok := r.s.items[id]; ok {
			out[id] = items
		}
	}
	return out, nil
}

type memNotifications struct{ s *memStore }

func (r memNotifications) Create(ctx context.Context, n *model.Notification) error {
	n.ID = int64(len(r.s.notifications) + 1)
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r memNotifications) FindByID(ctx context.Context, id int64) (model.Notification, error) {
	panic("not used in tx")
}

func (r memNotifications) ListByStudent(ctx context.Context, studentRef string) ([]model.Notification, error) {
	panic("not used in tx")
}

func (r memNotifications) CountUnread(ctx context.Context, studentRef string) (int64, error) {
	panic("not used in tx")
}

func (r memNotifications) MarkRead(ctx context.Context, id int64) error { panic("not used in tx") }

func (r memNotifications) MarkAllRead(ctx context.Context, studentRef string) error {
	panic("not used in tx")
}

type memAuditLogs struct{ s *memStore }

func (r memAuditLogs) Create(ctx context.Context, log model.AuditLog) error {
	log.ID = int64(len(r.s.auditLogs) + 1)
	r.s.auditLogs = append(r.s.auditLogs, log)
	return nil
}

func (r memAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	return append([]model.AuditLog(nil), r.s.auditLogs...), nil
}

// =====================
// CanteenRepository（コード引きのみ）
// =====================

type memCanteens struct {
	repo.CanteenRepository

	mu    sync.Mutex
	items map[string]model.Canteen
}

func newMemCanteens(items ...model.Canteen) *memCanteens {
	m := &memCanteens{items: map[string]model.Canteen{}}
	for _, c := range items {
		m.items[c.Code] = c
	}
	return m
}

func (m *memCanteens) FindByCode(ctx context.Context, code string) (model.Canteen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[code]
	if !ok {
		return model.Canteen{}, repo.ErrNotFound
	}
	return c, nil
}

func approvedCanteen(id int64, code, name string) model.Canteen {
	return model.Canteen{
		ID:             id,
		Code:           code,
		Name:           name,
		Status:         model.CanteenStatusActive,
		ApprovalStatus: model.ApprovalApproved,
	}
}

// =====================
// SequenceRepository
// =====================

// 読んでから書くまでに他goroutineへ譲るので、直列化されていないと番号が重複する。
type racySeqRepo struct {
	mu     sync.Mutex
	values map[string]int64
	// 先頭からfailN回はErrDuplicateを返す
	failN int
	err   error
	calls int
}

func newRacySeqRepo() *racySeqRepo {
	return &racySeqRepo{values: map[string]int64{}}
}

func (r *racySeqRepo) Increment(ctx context.Context, scopeKey, dayKey string) (int64, error) {
	key := scopeKey + "/" + dayKey

	r.mu.Lock()
	r.calls++
	if r.err != nil {
		r.mu.Unlock()
		return 0, r.err
	}
	if r.failN > 0 {
		r.failN--
		r.mu.Unlock()
		return 0, repo.ErrDuplicate
	}
	v := r.values[key]
	r.mu.Unlock()

	runtime.Gosched()
	v++

	r.mu.Lock()
	r.values[key] = v
	r.mu.Unlock()
	return v, nil
}

func (r *racySeqRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
