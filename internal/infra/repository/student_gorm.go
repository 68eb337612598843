package repository

import (
	"context"

	"canteen/internal/domain/model"

	"gorm.io/gorm"
)

type StudentGormRepository struct {
	db *gorm.DB
}

func NewStudentGormRepository(db *gorm.DB) *StudentGormRepository {
	return &StudentGormRepository{db: db}
}

func (r *StudentGormRepository) Create(ctx context.Context, s *model.Student) error {
	return translateError(r.db.WithContext(ctx).Create(s).Error)
}

func (r *StudentGormRepository) FindByID(ctx context.Context, id int64) (model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return model.Student{}, translateError(err)
	}
	return s, nil
}

func (r *StudentGormRepository) FindByUSN(ctx context.Context, usn string) (model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("usn = ?", usn).First(&s).Error; err != nil {
		return model.Student{}, translateError(err)
	}
	return s, nil
}

func (r *StudentGormRepository) FindByEmail(ctx context.Context, email string) (model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error; err != nil {
		return model.Student{}, translateError(err)
	}
	return s, nil
}

func (r *StudentGormRepository) ExistsByUSNOrEmail(ctx context.Context, usn, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("usn = ? OR email = ?", usn, email).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *StudentGormRepository) List(ctx context.Context, page, limit int) ([]model.Student, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&total).Error; err != nil {
		return []model.Student{}, 0, err
	}

	var items []model.Student
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return []model.Student{}, 0, err
	}
	return items, total, nil
}
