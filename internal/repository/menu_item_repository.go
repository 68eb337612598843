package repository

import (
	"context"

	"canteen/internal/domain/model"
)

type MenuItemRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
	ListByCanteen(ctx context.Context, canteenRef string) ([]model.MenuItem, error)
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id int64) error
}
