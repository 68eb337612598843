package usecase

import (
	"context"
	"errors"
	"net/http"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"
)

type CanteenUsecase struct {
	canteens repo.CanteenRepository
}

func NewCanteenUsecase(canteens repo.CanteenRepository) *CanteenUsecase {
	return &CanteenUsecase{canteens: canteens}
}

type UpdateOperatingHoursInput struct {
	Enabled   *bool
	OpenTime  string
	CloseTime string
}

func (u *CanteenUsecase) find(ctx context.Context, id int64) (model.Canteen, error) {
	c, err := u.canteens.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Canteen{}, NewHTTPError(http.StatusNotFound, "canteen not found")
	}
	if err != nil {
		return model.Canteen{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

// 学生向け：営業中かつ承認済みの店舗
func (u *CanteenUsecase) ListActive(ctx context.Context) ([]CanteenDTO, error) {
	items, err := u.canteens.List(ctx, repo.CanteenListFilter{
		ApprovalStatus: string(model.ApprovalApproved),
		Status:         string(model.CanteenStatusActive),
	})
	if err != nil {
		return []CanteenDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	outs := make([]CanteenDTO, 0, len(items))
	for _, c := range items {
		outs = append(outs, ToCanteenDTO(c))
	}
	return outs, nil
}

func (u *CanteenUsecase) Profile(ctx context.Context, id int64) (CanteenDTO, error) {
	c, err := u.find(ctx, id)
	if err != nil {
		return CanteenDTO{}, err
	}
	return ToCanteenDTO(c), nil
}

// 営業中/休業を手動で切り替える
func (u *CanteenUsecase) ToggleStatus(ctx context.Context, id int64) (CanteenDTO, error) {
	c, err := u.find(ctx, id)
	if err != nil {
		return CanteenDTO{}, err
	}

	next := model.CanteenStatusActive
	if c.IsActive() {
		next = model.CanteenStatusInactive
	}
	if err := u.canteens.UpdateStatus(ctx, id, next); err != nil {
		return CanteenDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	c.Status = next
	return ToCanteenDTO(c), nil
}

func (u *CanteenUsecase) GetOperatingHours(ctx context.Context, id int64) (model.OperatingHours, error) {
	c, err := u.find(ctx, id)
	if err != nil {
		return model.OperatingHours{}, err
	}
	return c.OperatingHours, nil
}

// 指定された項目だけ更新する
func (u *CanteenUsecase) UpdateOperatingHours(ctx context.Context, id int64, in UpdateOperatingHoursInput) (model.OperatingHours, error) {
	c, err := u.find(ctx, id)
	if err != nil {
		return model.OperatingHours{}, err
	}

	hours := c.OperatingHours
	if in.OpenTime != "" {
		v, ok := model.NormalizeClock(in.OpenTime)
		if !ok {
			return model.OperatingHours{}, NewHTTPError(http.StatusBadRequest, "invalid open time format, use HH:MM")
		}
		hours.OpenTime = v
	}
	if in.CloseTime != "" {
		v, ok := model.NormalizeClock(in.CloseTime)
		if !ok {
			return model.OperatingHours{}, NewHTTPError(http.StatusBadRequest, "invalid close time format, use HH:MM")
		}
		hours.CloseTime = v
	}
	if in.Enabled != nil {
		hours.Enabled = *in.Enabled
	}

	if err := u.canteens.UpdateOperatingHours(ctx, id, hours); err != nil {
		return model.OperatingHours{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return hours, nil
}
