package repository

import (
	"context"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"gorm.io/gorm"
)

type CanteenGormRepository struct {
	db *gorm.DB
}

func NewCanteenGormRepository(db *gorm.DB) *CanteenGormRepository {
	return &CanteenGormRepository{db: db}
}

func (r *CanteenGormRepository) Create(ctx context.Context, c *model.Canteen) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CanteenGormRepository) FindByID(ctx context.Context, id int64) (model.Canteen, error) {
	var c model.Canteen
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return model.Canteen{}, translateError(err)
	}
	return c, nil
}

func (r *CanteenGormRepository) FindByCode(ctx context.Context, code string) (model.Canteen, error) {
	var c model.Canteen
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return model.Canteen{}, translateError(err)
	}
	return c, nil
}

func (r *CanteenGormRepository) FindByEmail(ctx context.Context, email string) (model.Canteen, error) {
	var c model.Canteen
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return model.Canteen{}, translateError(err)
	}
	return c, nil
}

func (r *CanteenGormRepository) ExistsByCodeOrEmail(ctx context.Context, code, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("code = ? OR email = ?", code, email).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CanteenGormRepository) List(ctx context.Context, f repo.CanteenListFilter) ([]model.Canteen, error) {
	q := r.db.WithContext(ctx).Model(&model.Canteen{})
	if f.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", f.ApprovalStatus)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var items []model.Canteen
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return []model.Canteen{}, err
	}
	return items, nil
}

func (r *CanteenGormRepository) ListWithOperatingHours(ctx context.Context) ([]model.Canteen, error) {
	var items []model.Canteen
	err := r.db.WithContext(ctx).
		Where("operating_hours_enabled = ?", true).
		Find(&items).Error
	if err != nil {
		return []model.Canteen{}, err
	}
	return items, nil
}

func (r *CanteenGormRepository) UpdateStatus(ctx context.Context, id int64, status model.CanteenStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CanteenGormRepository) UpdateApproval(ctx context.Context, id int64, approval model.ApprovalStatus, status model.CanteenStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approval_status": approval,
			"status":          status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CanteenGormRepository) UpdateOperatingHours(ctx context.Context, id int64, hours model.OperatingHours) error {
	res := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"operating_hours_enabled":    hours.Enabled,
			"operating_hours_open_time":  hours.OpenTime,
			"operating_hours_close_time": hours.CloseTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CanteenGormRepository) CountByApproval(ctx context.Context, approval model.ApprovalStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("approval_status = ?", approval).
		Count(&n).Error
	return n, err
}

func (r *CanteenGormRepository) CountActiveApproved(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Canteen{}).
		Where("status = ? AND approval_status = ?", model.CanteenStatusActive, model.ApprovalApproved).
		Count(&n).Error
	return n, err
}
