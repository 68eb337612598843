package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CanteenRepoMock struct {
	mock.Mock
	repo.CanteenRepository
}

func (m *CanteenRepoMock) FindByID(ctx context.Context, id int64) (model.Canteen, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Canteen)
	return c, args.Error(1)
}

func (m *CanteenRepoMock) List(ctx context.Context, f repo.CanteenListFilter) ([]model.Canteen, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Canteen)
	return items, args.Error(1)
}

func (m *CanteenRepoMock) UpdateStatus(ctx context.Context, id int64, status model.CanteenStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *CanteenRepoMock) UpdateOperatingHours(ctx context.Context, id int64, hours model.OperatingHours) error {
	return m.Called(ctx, id, hours).Error(0)
}

func TestCanteenListActive_FiltersApprovedAndActive(t *testing.T) {
	canteens := new(CanteenRepoMock)
	canteens.On("List", mock.Anything, repo.CanteenListFilter{ApprovalStatus: "approved", Status: "active"}).
		Return([]model.Canteen{approvedCanteen(1, "M1", "Main Canteen")}, nil)

	out, err := NewCanteenUsecase(canteens).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "M1", out[0].CanteenID)
	assert.Equal(t, "active", out[0].Status)
}

func TestCanteenToggleStatus(t *testing.T) {
	canteens := new(CanteenRepoMock)
	canteens.On("FindByID", mock.Anything, int64(1)).Return(approvedCanteen(1, "M1", "Main Canteen"), nil)
	canteens.On("UpdateStatus", mock.Anything, int64(1), model.CanteenStatusInactive).Return(nil).Once()

	out, err := NewCanteenUsecase(canteens).ToggleStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "inactive", out.Status)
	canteens.AssertExpectations(t)
}

func TestCanteenToggleStatus_NotFound(t *testing.T) {
	canteens := new(CanteenRepoMock)
	canteens.On("FindByID", mock.Anything, int64(9)).Return(model.Canteen{}, repo.ErrNotFound)

	_, err := NewCanteenUsecase(canteens).ToggleStatus(context.Background(), 9)
	requireHTTPStatus(t, err, http.StatusNotFound)
	canteens.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOperatingHours_NormalizesAndKeepsUnsetFields(t *testing.T) {
	canteens := new(CanteenRepoMock)
	c := approvedCanteen(1, "M1", "Main Canteen")
	c.OperatingHours = model.OperatingHours{Enabled: false, OpenTime: "09:00", CloseTime: "17:00"}
	canteens.On("FindByID", mock.Anything, int64(1)).Return(c, nil)

	want := model.OperatingHours{Enabled: true, OpenTime: "08:30", CloseTime: "17:00"}
	canteens.On("UpdateOperatingHours", mock.Anything, int64(1), want).Return(nil).Once()

	enabled := true
	got, err := NewCanteenUsecase(canteens).UpdateOperatingHours(context.Background(), 1, UpdateOperatingHoursInput{
		Enabled:  &enabled,
		OpenTime: "8:30",
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	canteens.AssertExpectations(t)
}

func TestUpdateOperatingHours_Errors(t *testing.T) {
	cases := []struct {
		name  string
		in    UpdateOperatingHoursInput
		dbErr error
		code  int
		msg   string
	}{
		{"bad open", UpdateOperatingHoursInput{OpenTime: "25:00"}, nil, http.StatusBadRequest, "invalid open time format, use HH:MM"},
		{"bad close", UpdateOperatingHoursInput{CloseTime: "5pm"}, nil, http.StatusBadRequest, "invalid close time format, use HH:MM"},
		{"db failure", UpdateOperatingHoursInput{CloseTime: "18:00"}, errors.New("boom"), http.StatusInternalServerError, "db error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			canteens := new(CanteenRepoMock)
			canteens.On("FindByID", mock.Anything, int64(1)).Return(approvedCanteen(1, "M1", "Main Canteen"), nil)
			canteens.On("UpdateOperatingHours", mock.Anything, int64(1), mock.Anything).Return(tc.dbErr)

			_, err := NewCanteenUsecase(canteens).UpdateOperatingHours(context.Background(), 1, tc.in)
			he := requireHTTPStatus(t, err, tc.code)
			assert.Equal(t, tc.msg, he.Message)
		})
	}
}
