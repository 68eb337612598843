package repository

import (
	"context"
	"time"
)

type RevenueGroupBy string

const (
	GroupByDay   RevenueGroupBy = "day"
	GroupByWeek  RevenueGroupBy = "week"
	GroupByMonth RevenueGroupBy = "month"
)

type RevenueRow struct {
	Key     string `json:"key"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

type RevenueFilter struct {
	From    *time.Time
	To      *time.Time
	GroupBy RevenueGroupBy
}

// 学生ごとの注文集計。件数は全件、金額はキャンセル除外。
type StudentOrderStats struct {
	TotalOrders     int64 `json:"total_orders"`
	TotalSpent      int64 `json:"total_spent"`
	PendingOrders   int64 `json:"pending_orders"`
	CompletedOrders int64 `json:"completed_orders"`
}

// 店舗エクスポート1行。today/month は day_key で判定する。
type CanteenExportRow struct {
	CanteenID      string    `json:"canteen_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	ApprovalStatus string    `json:"approval_status"`
	HoursEnabled   bool      `json:"-"`
	OpenTime       string    `json:"-"`
	CloseTime      string    `json:"-"`
	OperatingHours string    `gorm:"-" json:"operating_hours"`
	TotalOrders    int64     `json:"total_orders"`
	TodayOrders    int64     `json:"today_orders"`
	MonthOrders    int64     `json:"month_orders"`
	TotalRevenue   int64     `json:"total_revenue"`
	TodayRevenue   int64     `json:"today_revenue"`
	MonthRevenue   int64     `json:"month_revenue"`
	CreatedAt      time.Time `json:"created_at"`
}

type StudentExportRow struct {
	USN          string     `json:"usn"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	TotalOrders  int64      `json:"total_orders"`
	TodayOrders  int64      `json:"today_orders"`
	MonthOrders  int64      `json:"month_orders"`
	TotalSpent   int64      `json:"total_spent"`
	TodaySpent   int64      `json:"today_spent"`
	MonthSpent   int64      `json:"month_spent"`
	LastOrderAt  *time.Time `json:"last_order_at"`
	RegisteredAt time.Time  `json:"registered_at"`
}

type OrderExportRow struct {
	OrderID     string    `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CanteenID   string    `json:"canteen_id"`
	CanteenName string    `json:"canteen_name"`
	StudentUSN  string    `json:"student_usn"`
	StudentName string    `json:"student_name"`
	ItemsCount  int64     `json:"items_count"`
	TotalAmount int64     `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ExportOrderFilter struct {
	From *time.Time
	To   *time.Time
}

// 売上集計（キャンセル除外）とエクスポート
type ReportRepository interface {
	RevenueByPeriod(ctx context.Context, f RevenueFilter) ([]RevenueRow, error)
	RevenueByCanteen(ctx context.Context, f RevenueFilter) ([]RevenueRow, error)
	// dayKeyが空なら全期間
	TotalRevenue(ctx context.Context, dayKey string) (int64, int64, error)

	StudentOrderStats(ctx context.Context, studentRef string) (StudentOrderStats, error)

	// todayKey は YYYYMMDD、monthKey は YYYYMM
	ExportCanteens(ctx context.Context, todayKey, monthKey string) ([]CanteenExportRow, error)
	ExportStudents(ctx context.Context, todayKey, monthKey string) ([]StudentExportRow, error)
	ExportOrders(ctx context.Context, f ExportOrderFilter) ([]OrderExportRow, error)
}
