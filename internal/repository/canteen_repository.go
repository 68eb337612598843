package repository

import (
	"context"

	"canteen/internal/domain/model"
)

type CanteenListFilter struct {
	ApprovalStatus string
	Status         string
}

type CanteenRepository interface {
	Create(ctx context.Context, c *model.Canteen) error
	FindByID(ctx context.Context, id int64) (model.Canteen, error)
	FindByCode(ctx context.Context, code string) (model.Canteen, error)
	FindByEmail(ctx context.Context, email string) (model.Canteen, error)
	// code か email のどちらかが使用済みか
	ExistsByCodeOrEmail(ctx context.Context, code, email string) (bool, error)
	List(ctx context.Context, f CanteenListFilter) ([]model.Canteen, error)
	// 営業時間が有効な店舗だけ
	ListWithOperatingHours(ctx context.Context) ([]model.Canteen, error)
	UpdateStatus(ctx context.Context, id int64, status model.CanteenStatus) error
	UpdateApproval(ctx context.Context, id int64, approval model.ApprovalStatus, status model.CanteenStatus) error
	UpdateOperatingHours(ctx context.Context, id int64, hours model.OperatingHours) error
	CountByApproval(ctx context.Context, approval model.ApprovalStatus) (int64, error)
	CountActiveApproved(ctx context.Context) (int64, error)
}
