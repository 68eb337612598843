package repository

import (
	"context"
	"fmt"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"gorm.io/gorm"
)

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

// 期間キー。created_at ではなく day_key（APP_TIMEZONE で確定済み）から作る
func periodExpr(g repo.RevenueGroupBy) string {
	const day = `to_date(day_key, 'YYYYMMDD')`
	switch g {
	case repo.GroupByMonth:
		return `to_char(` + day + `, 'YYYY-MM')`
	case repo.GroupByWeek:
		return `to_char(` + day + `, 'IYYY-"W"IW')`
	default:
		return `to_char(` + day + `, 'YYYY-MM-DD')`
	}
}

func revenueBase(q *gorm.DB, f repo.RevenueFilter) *gorm.DB {
	q = q.Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCancelled)
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	return q
}

func revenueByPeriodQuery(q *gorm.DB, f repo.RevenueFilter) *gorm.DB {
	expr := periodExpr(f.GroupBy)
	return revenueBase(q, f).
		Select(expr + " AS key, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Group(expr).
		Order("key asc")
}

func (r *ReportGormRepository) RevenueByPeriod(ctx context.Context, f repo.RevenueFilter) ([]repo.RevenueRow, error) {
	var rows []repo.RevenueRow
	if err := revenueByPeriodQuery(r.db.WithContext(ctx), f).Scan(&rows).Error; err != nil {
		return []repo.RevenueRow{}, err
	}
	return rows, nil
}

func (r *ReportGormRepository) RevenueByCanteen(ctx context.Context, f repo.RevenueFilter) ([]repo.RevenueRow, error) {
	var rows []repo.RevenueRow
	err := revenueBase(r.db.WithContext(ctx), f).
		Select("canteen_ref AS key, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Group("canteen_ref").
		Order("revenue desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.RevenueRow{}, err
	}
	return rows, nil
}

func (r *ReportGormRepository) TotalRevenue(ctx context.Context, dayKey string) (int64, int64, error) {
	var out struct {
		Revenue int64
		Orders  int64
	}
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCancelled)
	if dayKey != "" {
		q = q.Where("day_key = ?", dayKey)
	}
	err := q.Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").Scan(&out).Error
	if err != nil {
		return 0, 0, err
	}
	return out.Revenue, out.Orders, nil
}

func studentStatsQuery(q *gorm.DB, studentRef string) *gorm.DB {
	return q.Model(&model.Order{}).
		Where("student_ref = ?", studentRef).
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount) FILTER (WHERE status <> ?), 0) AS total_spent,
			COUNT(*) FILTER (WHERE status IN ?) AS pending_orders,
			COUNT(*) FILTER (WHERE status = ?) AS completed_orders`,
			model.OrderStatusCancelled,
			[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusConfirmed},
			model.OrderStatusServed,
		)
}

func (r *ReportGormRepository) StudentOrderStats(ctx context.Context, studentRef string) (repo.StudentOrderStats, error) {
	var out repo.StudentOrderStats
	if err := studentStatsQuery(r.db.WithContext(ctx), studentRef).Scan(&out).Error; err != nil {
		return repo.StudentOrderStats{}, err
	}
	return out, nil
}

// 件数・金額の today / month / 全期間。o はキャンセル除外で LEFT JOIN 済みの注文
func periodTotals(amount string) string {
	return fmt.Sprintf(`COUNT(o.id) AS total_orders,
			COUNT(o.id) FILTER (WHERE o.day_key = ?) AS today_orders,
			COUNT(o.id) FILTER (WHERE o.day_key LIKE ?) AS month_orders,
			COALESCE(SUM(o.total_amount), 0) AS total_%[1]s,
			COALESCE(SUM(o.total_amount) FILTER (WHERE o.day_key = ?), 0) AS today_%[1]s,
			COALESCE(SUM(o.total_amount) FILTER (WHERE o.day_key LIKE ?), 0) AS month_%[1]s`, amount)
}

func periodArgs(todayKey, monthKey string) []interface{} {
	return []interface{}{todayKey, monthKey + "%", todayKey, monthKey + "%"}
}

func exportCanteensQuery(q *gorm.DB, todayKey, monthKey string) *gorm.DB {
	return q.Table("canteens AS c").
		Select(`c.code AS canteen_id, c.name, c.email, c.status, c.approval_status,
			c.operating_hours_enabled AS hours_enabled,
			c.operating_hours_open_time AS open_time,
			c.operating_hours_close_time AS close_time,
			`+periodTotals("revenue")+`,
			c.created_at`,
			periodArgs(todayKey, monthKey)...,
		).
		Joins("LEFT JOIN orders AS o ON o.canteen_ref = c.code AND o.status <> ?", model.OrderStatusCancelled).
		Group("c.id").
		Order("c.code asc")
}

func (r *ReportGormRepository) ExportCanteens(ctx context.Context, todayKey, monthKey string) ([]repo.CanteenExportRow, error) {
	var rows []repo.CanteenExportRow
	if err := exportCanteensQuery(r.db.WithContext(ctx), todayKey, monthKey).Scan(&rows).Error; err != nil {
		return []repo.CanteenExportRow{}, err
	}
	return rows, nil
}

func exportStudentsQuery(q *gorm.DB, todayKey, monthKey string) *gorm.DB {
	return q.Table("students AS s").
		Select(`s.usn, s.name, s.email,
			`+periodTotals("spent")+`,
			MAX(o.created_at) AS last_order_at,
			s.created_at AS registered_at`,
			periodArgs(todayKey, monthKey)...,
		).
		Joins("LEFT JOIN orders AS o ON o.student_ref = s.usn AND o.status <> ?", model.OrderStatusCancelled).
		Group("s.id").
		Order("s.usn asc")
}

func (r *ReportGormRepository) ExportStudents(ctx context.Context, todayKey, monthKey string) ([]repo.StudentExportRow, error) {
	var rows []repo.StudentExportRow
	if err := exportStudentsQuery(r.db.WithContext(ctx), todayKey, monthKey).Scan(&rows).Error; err != nil {
		return []repo.StudentExportRow{}, err
	}
	return rows, nil
}

func exportOrdersQuery(q *gorm.DB, f repo.ExportOrderFilter) *gorm.DB {
	q = q.Table("orders AS o").
		Select(`o.order_id, o.order_number,
			o.canteen_ref AS canteen_id, COALESCE(c.name, '') AS canteen_name,
			o.student_ref AS student_usn, COALESCE(s.name, '') AS student_name,
			(SELECT COUNT(*) FROM order_items AS oi WHERE oi.order_id = o.id) AS items_count,
			o.total_amount, o.status, o.created_at, o.updated_at`).
		Joins("LEFT JOIN canteens AS c ON c.code = o.canteen_ref").
		Joins("LEFT JOIN students AS s ON s.usn = o.student_ref")
	if f.From != nil {
		q = q.Where("o.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("o.created_at <= ?", *f.To)
	}
	return q.Order("o.created_at desc, o.id desc")
}

func (r *ReportGormRepository) ExportOrders(ctx context.Context, f repo.ExportOrderFilter) ([]repo.OrderExportRow, error) {
	var rows []repo.OrderExportRow
	if err := exportOrdersQuery(r.db.WithContext(ctx), f).Scan(&rows).Error; err != nil {
		return []repo.OrderExportRow{}, err
	}
	return rows, nil
}
