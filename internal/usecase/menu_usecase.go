package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"
)

type MenuUsecase struct {
	items repo.MenuItemRepository
}

func NewMenuUsecase(items repo.MenuItemRepository) *MenuUsecase {
	return &MenuUsecase{items: items}
}

type MenuItemInput struct {
	Name        string
	Price       int64
	Available   *bool
	Category    string
	Description string
}

func validateMenuItem(in MenuItemInput) (model.MenuCategory, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price < 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	cat := model.MenuCategory(in.Category)
	if cat == "" {
		cat = model.MenuCategoryOther
	}
	if !cat.Valid() {
		return "", NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	return cat, nil
}

func (u *MenuUsecase) ListByCanteen(ctx context.Context, canteenRef string) ([]model.MenuItem, error) {
	items, err := u.items.ListByCanteen(ctx, strings.ToUpper(strings.TrimSpace(canteenRef)))
	if err != nil {
		return []model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *MenuUsecase) Add(ctx context.Context, canteenRef string, in MenuItemInput) (model.MenuItem, error) {
	cat, err := validateMenuItem(in)
	if err != nil {
		return model.MenuItem{}, err
	}

	item := model.MenuItem{
		CanteenRef:  canteenRef,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Available:   true,
		Category:    cat,
		Description: strings.TrimSpace(in.Description),
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if err := u.items.Create(ctx, &item); err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

// 自店舗のメニューだけ取得（他店舗なら403）
func (u *MenuUsecase) owned(ctx context.Context, canteenRef string, id int64) (model.MenuItem, error) {
	item, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.CanteenRef != canteenRef {
		return model.MenuItem{}, NewHTTPError(http.StatusForbidden, "you can only change your own menu items")
	}
	return item, nil
}

func (u *MenuUsecase) Update(ctx context.Context, canteenRef string, id int64, in MenuItemInput) (model.MenuItem, error) {
	cat, err := validateMenuItem(in)
	if err != nil {
		return model.MenuItem{}, err
	}
	item, err := u.owned(ctx, canteenRef, id)
	if err != nil {
		return model.MenuItem{}, err
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Price = in.Price
	item.Category = cat
	item.Description = strings.TrimSpace(in.Description)
	if in.Available != nil {
		item.Available = *in.Available
	}
	if err := u.items.Update(ctx, &item); err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

func (u *MenuUsecase) Delete(ctx context.Context, canteenRef string, id int64) error {
	if _, err := u.owned(ctx, canteenRef, id); err != nil {
		return err
	}
	if err := u.items.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "menu item not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
