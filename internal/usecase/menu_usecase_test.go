package usecase

import (
	"context"
	"net/http"
	"testing"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MenuItemRepoMock struct{ mock.Mock }

func (m *MenuItemRepoMock) Create(ctx context.Context, item *model.MenuItem) error {
	args := m.Called(ctx, item)
	item.ID = 100
	return args.Error(0)
}

func (m *MenuItemRepoMock) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

func (m *MenuItemRepoMock) ListByCanteen(ctx context.Context, canteenRef string) ([]model.MenuItem, error) {
	args := m.Called(ctx, canteenRef)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuItemRepoMock) Update(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MenuItemRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ repo.MenuItemRepository = (*MenuItemRepoMock)(nil)

func TestMenuAdd_DefaultsCategoryAndAvailability(t *testing.T) {
	items := new(MenuItemRepoMock)
	items.On("Create", mock.Anything, mock.MatchedBy(func(i *model.MenuItem) bool {
		return i.CanteenRef == "M1" && i.Category == model.MenuCategoryOther && i.Available
	})).Return(nil)

	out, err := NewMenuUsecase(items).Add(context.Background(), "M1", MenuItemInput{Name: " Masala Dosa ", Price: 60})
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
	assert.Equal(t, "Masala Dosa", out.Name)
}

func TestMenuAdd_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   MenuItemInput
		msg  string
	}{
		{"no name", MenuItemInput{Price: 10}, "name is required"},
		{"negative price", MenuItemInput{Name: "Tea", Price: -1}, "invalid price"},
		{"unknown category", MenuItemInput{Name: "Tea", Price: 10, Category: "Dessert"}, "invalid category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := new(MenuItemRepoMock)
			_, err := NewMenuUsecase(items).Add(context.Background(), "M1", tc.in)
			he := requireHTTPStatus(t, err, http.StatusBadRequest)
			assert.Equal(t, tc.msg, he.Message)
			items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestMenuListByCanteen_UppercasesCode(t *testing.T) {
	items := new(MenuItemRepoMock)
	items.On("ListByCanteen", mock.Anything, "M1").Return([]model.MenuItem{{ID: 1, CanteenRef: "M1", Name: "Tea"}}, nil)

	out, err := NewMenuUsecase(items).ListByCanteen(context.Background(), " m1")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestMenuUpdate_OwnItemOnly(t *testing.T) {
	items := new(MenuItemRepoMock)
	items.On("FindByID", mock.Anything, int64(1)).Return(model.MenuItem{ID: 1, CanteenRef: "M1", Name: "Tea", Price: 10, Available: true}, nil)
	items.On("Update", mock.Anything, mock.MatchedBy(func(i *model.MenuItem) bool {
		return i.Price == 15 && !i.Available && i.Category == model.MenuCategoryBeverages
	})).Return(nil).Once()

	uc := NewMenuUsecase(items)
	off := false
	out, err := uc.Update(context.Background(), "M1", 1, MenuItemInput{Name: "Tea", Price: 15, Available: &off, Category: "Beverages"})
	require.NoError(t, err)
	assert.False(t, out.Available)

	_, err = uc.Update(context.Background(), "M2", 1, MenuItemInput{Name: "Tea", Price: 15})
	he := requireHTTPStatus(t, err, http.StatusForbidden)
	assert.Equal(t, "you can only change your own menu items", he.Message)
	items.AssertExpectations(t)
}

func TestMenuDelete(t *testing.T) {
	items := new(MenuItemRepoMock)
	items.On("FindByID", mock.Anything, int64(1)).Return(model.MenuItem{ID: 1, CanteenRef: "M1"}, nil)
	items.On("FindByID", mock.Anything, int64(2)).Return(model.MenuItem{}, repo.ErrNotFound)
	items.On("Delete", mock.Anything, int64(1)).Return(nil).Once()

	uc := NewMenuUsecase(items)
	require.NoError(t, uc.Delete(context.Background(), "M1", 1))

	requireHTTPStatus(t, uc.Delete(context.Background(), "M2", 1), http.StatusForbidden)
	requireHTTPStatus(t, uc.Delete(context.Background(), "M1", 2), http.StatusNotFound)
	items.AssertExpectations(t)
}
