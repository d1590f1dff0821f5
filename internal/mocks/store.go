package mocks

import (
	"context"

	models "github.com/pedalhub/pedalhub/internal"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadBikes(ctx context.Context) []models.BikeDetails {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.BikeDetails)
}

func (m *MockStore) LoadBookings(ctx context.Context) []models.Booking {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Booking)
}

func (m *MockStore) LoadHistory(ctx context.Context) []models.Booking {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Booking)
}

func (m *MockStore) SaveBikes(ctx context.Context, bikes []models.BikeDetails) error {
	args := m.Called(ctx, bikes)
	return args.Error(0)
}

func (m *MockStore) SaveBookings(ctx context.Context, bookings []models.Booking) error {
	args := m.Called(ctx, bookings)
	return args.Error(0)
}

func (m *MockStore) SaveHistory(ctx context.Context, history []models.Booking) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

// NewLoadedStore returns a MockStore that loads the given lists. Saves must be
// stubbed by the caller.
func NewLoadedStore(bikes []models.BikeDetails, bookings, history []models.Booking) *MockStore {
	m := new(MockStore)
	m.On("LoadBikes", mock.Anything).Return(bikes)
	m.On("LoadBookings", mock.Anything).Return(bookings)
	m.On("LoadHistory", mock.Anything).Return(history)
	return m
}
