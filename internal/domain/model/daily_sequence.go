package model

import "time"

// 店舗ごと・日ごとの注文番号カウンタ。
// (scope_key, day_key) で一意。削除はしない。
type DailySequence struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ScopeKey  string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_daily_sequences_scope_day,priority:1"`
	DayKey    string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_daily_sequences_scope_day,priority:2"`
	LastValue int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
