package repository

import (
	"context"

	"canteen/internal/domain/model"

	"gorm.io/gorm"
)

type AdminGormRepository struct {
	db *gorm.DB
}

func NewAdminGormRepository(db *gorm.DB) *AdminGormRepository {
	return &AdminGormRepository{db: db}
}

func (r *AdminGormRepository) Create(ctx context.Context, a *model.Admin) error {
	return translateError(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AdminGormRepository) FindByID(ctx context.Context, id int64) (model.Admin, error) {
	var a model.Admin
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return model.Admin{}, translateError(err)
	}
	return a, nil
}

func (r *AdminGormRepository) FindByEmail(ctx context.Context, email string) (model.Admin, error) {
	var a model.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return model.Admin{}, translateError(err)
	}
	return a, nil
}

func (r *AdminGormRepository) Update(ctx context.Context, a *model.Admin) error {
	return r.db.WithContext(ctx).Save(a).Error
}
