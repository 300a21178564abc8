package service

import (
	"context"
	"time"

	"parklot/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) FindConflicts(ctx context.Context, slotID int64, start, end time.Time) ([]*models.Reservation, error) {
	args := m.Called(ctx, slotID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *mockLedger) AdmitReservation(ctx context.Context, reservation *models.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *mockLedger) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockLedger) CancelReservationWithVersion(ctx context.Context, id, version int64) error {
	return m.Called(ctx, id, version).Error(0)
}

func (m *mockLedger) GetHolderReservations(ctx context.Context, holderID string) ([]*models.Reservation, error) {
	args := m.Called(ctx, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *mockLedger) GetReservationsByTimeRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *mockLedger) FindAvailableSlots(ctx context.Context, start, end time.Time, floorID int64) ([]*models.Slot, error) {
	args := m.Called(ctx, start, end, floorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *mockCatalog) GetSlots(ctx context.Context) ([]*models.Slot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

func (m *mockCatalog) GetFloors(ctx context.Context) ([]*models.Floor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Floor), args.Error(1)
}

func (m *mockCatalog) CreateFloor(ctx context.Context, floor *models.Floor) error {
	return m.Called(ctx, floor).Error(0)
}

func (m *mockCatalog) CreateSlot(ctx context.Context, slot *models.Slot) error {
	return m.Called(ctx, slot).Error(0)
}
