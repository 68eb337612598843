package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"
)

type AdminUsecase struct {
	tx        repo.TransactionManager
	admins    repo.AdminRepository
	canteens  repo.CanteenRepository
	students  repo.StudentRepository
	reports   repo.ReportRepository
	auditRepo repo.AuditLogRepository
	clock     Clock
	loc       *time.Location
}

func NewAdminUsecase(
	tx repo.TransactionManager,
	admins repo.AdminRepository,
	canteens repo.CanteenRepository,
	students repo.StudentRepository,
	reports repo.ReportRepository,
	auditRepo repo.AuditLogRepository,
	clock Clock,
	loc *time.Location,
) *AdminUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminUsecase{
		tx:        tx,
		admins:    admins,
		canteens:  canteens,
		students:  students,
		reports:   reports,
		auditRepo: auditRepo,
		clock:     clock,
		loc:       loc,
	}
}

type StudentListOutput struct {
	Items []StudentDTO `json:"items"`
	Total int64        `json:"total"`
}

type AdminDTO struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type StudentDetailOutput struct {
	Student    StudentDTO             `json:"student"`
	Orders     []OrderOutput          `json:"orders"`
	Statistics repo.StudentOrderStats `json:"statistics"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
}

type RevenueReportOutput struct {
	RevenueByPeriod  []repo.RevenueRow `json:"revenue_by_period"`
	RevenueByCanteen []repo.RevenueRow `json:"revenue_by_canteen"`
	TotalRevenue     int64             `json:"total_revenue"`
	TotalOrders      int64             `json:"total_orders"`
}

type DashboardStats struct {
	ActiveCanteens  int64 `json:"active_canteens"`
	PendingCanteens int64 `json:"pending_canteens"`
	TotalStudents   int64 `json:"total_students"`
	TotalOrders     int64 `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TodayOrders     int64 `json:"today_orders"`
	TodayRevenue    int64 `json:"today_revenue"`
}

func (u *AdminUsecase) ListCanteens(ctx context.Context, f repo.CanteenListFilter) ([]CanteenDTO, error) {
	items, err := u.canteens.List(ctx, f)
	if err != nil {
		return []CanteenDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	outs := make([]CanteenDTO, 0, len(items))
	for _, c := range items {
		outs = append(outs, ToCanteenDTO(c))
	}
	return outs, nil
}

func (u *AdminUsecase) ApproveCanteen(ctx context.Context, adminID int64, canteenID int64) (CanteenDTO, error) {
	return u.setApproval(ctx, adminID, canteenID, model.ApprovalApproved, model.CanteenStatusActive, model.AuditActionApproveCanteen)
}

func (u *AdminUsecase) RejectCanteen(ctx context.Context, adminID int64, canteenID int64) (CanteenDTO, error) {
	return u.setApproval(ctx, adminID, canteenID, model.ApprovalRejected, model.CanteenStatusInactive, model.AuditActionRejectCanteen)
}

func (u *AdminUsecase) setApproval(
	ctx context.Context,
	adminID int64,
	canteenID int64,
	approval model.ApprovalStatus,
	status model.CanteenStatus,
	action model.AuditAction,
) (CanteenDTO, error) {
	if adminID <= 0 {
		return CanteenDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	c, err := u.findCanteen(ctx, canteenID)
	if err != nil {
		return CanteenDTO{}, err
	}

	before := canteenSnapshot(c)
	if err := u.canteens.UpdateApproval(ctx, canteenID, approval, status); err != nil {
		return CanteenDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	c.ApprovalStatus = approval
	c.Status = status

	if err := u.audit(ctx, u.auditRepo, adminID, action, model.AuditResourceCanteen, c.Code, before, canteenSnapshot(c)); err != nil {
		return CanteenDTO{}, err
	}
	return ToCanteenDTO(c), nil
}

// 停止/再開
func (u *AdminUsecase) ToggleCanteenStatus(ctx context.Context, adminID int64, canteenID int64) (CanteenDTO, error) {
	if adminID <= 0 {
		return CanteenDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	c, err := u.findCanteen(ctx, canteenID)
	if err != nil {
		return CanteenDTO{}, err
	}

	before := canteenSnapshot(c)
	next := model.CanteenStatusActive
	if c.IsActive() {
		next = model.CanteenStatusInactive
	}
	if err := u.canteens.UpdateStatus(ctx, canteenID, next); err != nil {
		return CanteenDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	c.Status = next

	if err := u.audit(ctx, u.auditRepo, adminID, model.AuditActionToggleCanteen, model.AuditResourceCanteen, c.Code, before, canteenSnapshot(c)); err != nil {
		return CanteenDTO{}, err
	}
	return ToCanteenDTO(c), nil
}

func (u *AdminUsecase) ListStudents(ctx context.Context, page, limit int) (StudentListOutput, error) {
	if page < 1 {
		return StudentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return StudentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.students.List(ctx, page, limit)
	if err != nil {
		return StudentListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	outs := make([]StudentDTO, 0, len(items))
	for _, s := range items {
		outs = append(outs, toStudentDTO(s))
	}
	return StudentListOutput{Items: outs, Total: total}, nil
}

func (u *AdminUsecase) Profile(ctx context.Context, adminID int64) (AdminDTO, error) {
	if adminID <= 0 {
		return AdminDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	a, err := u.admins.FindByID(ctx, adminID)
	if errors.Is(err, repo.ErrNotFound) {
		return AdminDTO{}, NewHTTPError(http.StatusNotFound, "admin not found")
	}
	if err != nil {
		return AdminDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AdminDTO{ID: a.ID, Email: a.Email, IsActive: a.IsActive, LastLoginAt: a.LastLoginAt, CreatedAt: a.CreatedAt}, nil
}

// 学生詳細。注文は新しい順に直近 studentDetailOrders 件、集計は全件から。
const studentDetailOrders = 100

func (u *AdminUsecase) StudentDetail(ctx context.Context, studentID int64) (StudentDetailOutput, error) {
	s, err := u.students.FindByID(ctx, studentID)
	if errors.Is(err, repo.ErrNotFound) {
		return StudentDetailOutput{}, NewHTTPError(http.StatusNotFound, "student not found")
	}
	if err != nil {
		return StudentDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	stats, err := u.reports.StudentOrderStats(ctx, s.USN)
	if err != nil {
		return StudentDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := StudentDetailOutput{Student: toStudentDTO(s), Statistics: stats}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByStudent(ctx, s.USN, studentDetailOrders)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Orders, err = withItems(ctx, r, orders)
		return err
	})
	if err != nil {
		return StudentDetailOutput{}, err
	}
	return out, nil
}

// 注文一覧
func (u *AdminUsecase) ListOrders(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" {
		switch model.OrderStatus(f.Status) {
		case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusReady,
			model.OrderStatusServed, model.OrderStatusCancelled:
		default:
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items, err := withItems(ctx, r, orders)
		if err != nil {
			return err
		}
		out = OrderListOutput{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// CancelOrder は終端以外の注文をキャンセルし、監査ログを残す。
func (u *AdminUsecase) CancelOrder(ctx context.Context, adminID int64, orderID string) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := u.clock.Now()
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 終端ガード
		switch o.Status {
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order already cancelled")
		case model.OrderStatusServed:
			return NewHTTPError(http.StatusConflict, "order already served")
		}

		before := map[string]string{"status": string(o.Status)}
		if err := transition(ctx, r, &o, model.OrderStatusCancelled, now); err != nil {
			return err
		}

		if err := u.audit(ctx, r.AuditLogs(), adminID, model.AuditActionCancelOrder, model.AuditResourceOrder, o.OrderID,
			before, map[string]string{"status": string(o.Status)}); err != nil {
			return err
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

func (u *AdminUsecase) RevenueReport(ctx context.Context, f repo.RevenueFilter) (RevenueReportOutput, error) {
	switch f.GroupBy {
	case "":
		f.GroupBy = repo.GroupByDay
	case repo.GroupByDay, repo.GroupByWeek, repo.GroupByMonth:
	default:
		return RevenueReportOutput{}, NewHTTPError(http.StatusBadRequest, "invalid group_by")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return RevenueReportOutput{}, NewHTTPError(http.StatusBadRequest, "invalid period")
	}

	byPeriod, err := u.reports.RevenueByPeriod(ctx, f)
	if err != nil {
		return RevenueReportOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	byCanteen, err := u.reports.RevenueByCanteen(ctx, f)
	if err != nil {
		return RevenueReportOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := RevenueReportOutput{RevenueByPeriod: byPeriod, RevenueByCanteen: byCanteen}
	for _, row := range byPeriod {
		out.TotalRevenue += row.Revenue
		out.TotalOrders += row.Orders
	}
	return out, nil
}

func (u *AdminUsecase) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	var err error

	if s.ActiveCanteens, err = u.canteens.CountActiveApproved(ctx); err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if s.PendingCanteens, err = u.canteens.CountByApproval(ctx, model.ApprovalPending); err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, s.TotalStudents, err = u.students.List(ctx, 1, 1); err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if s.TotalRevenue, s.TotalOrders, err = u.reports.TotalRevenue(ctx, ""); err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	today := DayKey(u.clock.Now(), u.loc)
	if s.TodayRevenue, s.TodayOrders, err = u.reports.TotalRevenue(ctx, today); err != nil {
		return DashboardStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// エクスポート。today/month はアプリのタイムゾーンの day_key で切る
func (u *AdminUsecase) exportKeys() (string, string) {
	today := DayKey(u.clock.Now(), u.loc)
	return today, today[:6]
}

func (u *AdminUsecase) ExportCanteens(ctx context.Context) ([]repo.CanteenExportRow, error) {
	today, month := u.exportKeys()
	rows, err := u.reports.ExportCanteens(ctx, today, month)
	if err != nil {
		return []repo.CanteenExportRow{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for i := range rows {
		rows[i].OperatingHours = "manual"
		if rows[i].HoursEnabled {
			rows[i].OperatingHours = rows[i].OpenTime + "-" + rows[i].CloseTime
		}
	}
	return rows, nil
}

func (u *AdminUsecase) ExportStudents(ctx context.Context) ([]repo.StudentExportRow, error) {
	today, month := u.exportKeys()
	rows, err := u.reports.ExportStudents(ctx, today, month)
	if err != nil {
		return []repo.StudentExportRow{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rows, nil
}

func (u *AdminUsecase) ExportOrders(ctx context.Context, f repo.ExportOrderFilter) ([]repo.OrderExportRow, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return []repo.OrderExportRow{}, NewHTTPError(http.StatusBadRequest, "invalid period")
	}
	rows, err := u.reports.ExportOrders(ctx, f)
	if err != nil {
		return []repo.OrderExportRow{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rows, nil
}

// 監査ログ一覧
func (u *AdminUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit < 1 || f.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid period")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func (u *AdminUsecase) findCanteen(ctx context.Context, id int64) (model.Canteen, error) {
	c, err := u.canteens.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Canteen{}, NewHTTPError(http.StatusNotFound, "canteen not found")
	}
	if err != nil {
		return model.Canteen{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func canteenSnapshot(c model.Canteen) map[string]string {
	return map[string]string{
		"status":          string(c.Status),
		"approval_status": string(c.ApprovalStatus),
	}
}

func (u *AdminUsecase) audit(
	ctx context.Context,
	logs repo.AuditLogRepository,
	adminID int64,
	action model.AuditAction,
	resource model.AuditResourceType,
	key string,
	before, after map[string]string,
) error {
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)

	if err := logs.Create(ctx, model.AuditLog{
		ActorAdminID: adminID,
		Action:       action,
		ResourceType: resource,
		ResourceKey:  key,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
