package repository

import (
	"context"

	"canteen/internal/domain/model"
)

type AdminRepository interface {
	Create(ctx context.Context, a *model.Admin) error
	FindByID(ctx context.Context, id int64) (model.Admin, error)
	FindByEmail(ctx context.Context, email string) (model.Admin, error)
	Update(ctx context.Context, a *model.Admin) error
}
