package repository

import (
	"context"
	"fmt"
	"time"

	"canteen/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceGormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db, now: time.Now}
}

// INSERT ... ON CONFLICT (scope_key, day_key) DO UPDATE SET last_value = last_value + 1
// RETURNING last_value を1文で実行する。
func (r *SequenceGormRepository) Increment(ctx context.Context, scopeKey, dayKey string) (int64, error) {
	now := r.now()
	seq := model.DailySequence{
		ScopeKey:  scopeKey,
		DayKey:    dayKey,
		LastValue: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "scope_key"}, {Name: "day_key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"last_value": gorm.Expr("daily_sequences.last_value + 1"),
					"updated_at": now,
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "last_value"}}},
		).
		Create(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("increment daily sequence %s/%s: %w", scopeKey, dayKey, translateError(err))
	}
	return seq.LastValue, nil
}
