package repository

import (
	"testing"
	"time"

	repo "canteen/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 接続せずにSQLだけ組み立てる
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=canteen dbname=canteen sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestRevenueByPeriodQuery_UsesDayKey(t *testing.T) {
	db := newDryRunDB(t)

	cases := []struct {
		groupBy repo.RevenueGroupBy
		format  string
	}{
		{repo.GroupByDay, `'YYYY-MM-DD'`},
		{repo.GroupByWeek, `'IYYY-"W"IW'`},
		{repo.GroupByMonth, `'YYYY-MM'`},
	}

	for _, tc := range cases {
		t.Run(string(tc.groupBy), func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []repo.RevenueRow
				return revenueByPeriodQuery(tx, repo.RevenueFilter{GroupBy: tc.groupBy}).Find(&rows)
			})

			assert.Contains(t, sql, `to_char(to_date(day_key, 'YYYYMMDD'), `+tc.format+`)`)
			assert.NotContains(t, sql, "to_char(created_at")
			assert.Contains(t, sql, `status <> 'cancelled'`)
		})
	}
}

func TestRevenueByPeriodQuery_Period(t *testing.T) {
	db := newDryRunDB(t)
	ist := time.FixedZone("IST", 5*3600+1800)
	from := time.Date(2025, 10, 28, 0, 0, 0, 0, ist)
	to := time.Date(2025, 10, 28, 23, 59, 59, 0, ist)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []repo.RevenueRow
		return revenueByPeriodQuery(tx, repo.RevenueFilter{From: &from, To: &to}).Find(&rows)
	})

	assert.Contains(t, sql, "created_at >= ")
	assert.Contains(t, sql, "created_at <= ")
	assert.Contains(t, sql, "ORDER BY key asc")
}

func TestStudentStatsQuery(t *testing.T) {
	db := newDryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []repo.StudentOrderStats
		return studentStatsQuery(tx, "1MS21CS001").Find(&out)
	})

	assert.Contains(t, sql, `student_ref = '1MS21CS001'`)
	assert.Contains(t, sql, `FILTER (WHERE status <> 'cancelled')`)
	assert.Contains(t, sql, `FILTER (WHERE status IN ('pending','confirmed'))`)
	assert.Contains(t, sql, `FILTER (WHERE status = 'served')`)
}

func TestExportQueries_BucketByDayKey(t *testing.T) {
	db := newDryRunDB(t)

	canteens := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []repo.CanteenExportRow
		return exportCanteensQuery(tx, "20251028", "202510").Find(&rows)
	})
	assert.Contains(t, canteens, `o.day_key = '20251028'`)
	assert.Contains(t, canteens, `o.day_key LIKE '202510%'`)
	assert.Contains(t, canteens, `LEFT JOIN orders AS o ON o.canteen_ref = c.code AND o.status <> 'cancelled'`)
	assert.Contains(t, canteens, "AS today_revenue")
	assert.Regexp(t, `GROUP BY "?c"?\."?id"?`, canteens)

	students := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []repo.StudentExportRow
		return exportStudentsQuery(tx, "20251028", "202510").Find(&rows)
	})
	assert.Contains(t, students, `LEFT JOIN orders AS o ON o.student_ref = s.usn AND o.status <> 'cancelled'`)
	assert.Contains(t, students, "AS month_spent")
	assert.Contains(t, students, "MAX(o.created_at) AS last_order_at")
}

func TestExportOrdersQuery(t *testing.T) {
	db := newDryRunDB(t)
	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []repo.OrderExportRow
		return exportOrdersQuery(tx, repo.ExportOrderFilter{From: &from}).Find(&rows)
	})

	assert.Contains(t, sql, "LEFT JOIN canteens AS c ON c.code = o.canteen_ref")
	assert.Contains(t, sql, "LEFT JOIN students AS s ON s.usn = o.student_ref")
	assert.Contains(t, sql, "o.created_at >= ")
	assert.NotContains(t, sql, "o.created_at <= ")
	assert.Contains(t, sql, "ORDER BY o.created_at desc, o.id desc")
}
