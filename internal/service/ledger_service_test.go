package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	models "github.com/pedalhub/pedalhub/internal"
	"github.com/pedalhub/pedalhub/internal/mocks"
	"github.com/pedalhub/pedalhub/internal/ports"
	"github.com/pedalhub/pedalhub/internal/repository"
	"github.com/pedalhub/pedalhub/internal/service"
	"github.com/pedalhub/pedalhub/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleBikes() []models.BikeDetails {
	return []models.BikeDetails{
		{BikeID: "B1", BikeType: "Mountain", Size: "M", Color: "Red", RentalPrice: 10.0, Available: true},
		{BikeID: "B2", BikeType: "Road", Size: "L", Color: "Blue", RentalPrice: 15.0, Available: false},
	}
}

func validRental(bikeID string, hours float64) models.RentalRequest {
	return models.RentalRequest{
		BikeID:    bikeID,
		FirstName: "Ana",
		LastName:  "Reyes",
		Phone:     "09171234567",
		Hours:     hours,
	}
}

func stubSaves(m *mocks.MockStore) {
	m.On("SaveBikes", mock.Anything, mock.Anything).Return(nil)
	m.On("SaveBookings", mock.Anything, mock.Anything).Return(nil)
	m.On("SaveHistory", mock.Anything, mock.Anything).Return(nil)
}

func newLedger(t *testing.T, store *mocks.MockStore) ports.LedgerService {
	t.Helper()
	return service.NewLedgerService(context.Background(), store, validator.NewCustomValidator(), discardLogger())
}

func TestCreateRental(t *testing.T) {
	t.Run("Successful rental", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		stubSaves(store)
		ledger := newLedger(t, store)
		ctx := context.Background()

		booking, err := ledger.CreateRental(ctx, validRental("b1", 2))

		require.NoError(t, err)
		assert.Equal(t, 20.0, booking.TotalCost)
		assert.Equal(t, "B1", booking.BikeID)
		assert.Equal(t, models.StatusActive, booking.Status)
		assert.NotEqual(t, uuid.Nil, booking.ID)

		bike, found := ledger.FindBike("B1")
		require.True(t, found)
		assert.False(t, bike.Available)
		assert.Len(t, ledger.Bookings(), 1)
		assert.Len(t, ledger.History(), 1)
		assert.Equal(t, ledger.Bookings()[0], ledger.History()[0])

		store.AssertNumberOfCalls(t, "SaveBikes", 1)
		store.AssertNumberOfCalls(t, "SaveBookings", 1)
		store.AssertNumberOfCalls(t, "SaveHistory", 1)
	})

	t.Run("Bike not found", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		ledger := newLedger(t, store)

		booking, err := ledger.CreateRental(context.Background(), validRental("B404", 2))

		assert.Nil(t, booking)
		assert.ErrorIs(t, err, models.ErrBikeNotFound)
		assert.Empty(t, ledger.Bookings())
		assert.Empty(t, ledger.History())
		store.AssertNotCalled(t, "SaveBikes", mock.Anything, mock.Anything)
	})

	t.Run("Bike not available", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		ledger := newLedger(t, store)
		before := ledger.Bikes()

		booking, err := ledger.CreateRental(context.Background(), validRental("B2", 1))

		assert.Nil(t, booking)
		assert.ErrorIs(t, err, models.ErrBikeUnavailable)
		assert.Empty(t, ledger.Bookings())
		assert.Empty(t, ledger.History())
		assert.Equal(t, before, ledger.Bikes())
		store.AssertNotCalled(t, "SaveBikes", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SaveBookings", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SaveHistory", mock.Anything, mock.Anything)
	})

	t.Run("Non-positive duration", func(t *testing.T) {
		for _, hours := range []float64{0, -1} {
			store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
			ledger := newLedger(t, store)

			_, err := ledger.CreateRental(context.Background(), validRental("B1", hours))

			assert.ErrorIs(t, err, models.ErrInvalidDuration)
			bike, _ := ledger.FindBike("B1")
			assert.True(t, bike.Available)
		}
	})

	t.Run("Invalid customer fields", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		ledger := newLedger(t, store)

		req := validRental("B1", 1)
		req.Phone = "0917-123"
		_, err := ledger.CreateRental(context.Background(), req)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid rental request")
		assert.Empty(t, ledger.Bookings())
	})

	t.Run("Minutes normalised to hours", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		stubSaves(store)
		ledger := newLedger(t, store)

		booking, err := ledger.CreateRental(context.Background(), validRental("B1", models.MinutesToHours(30)))

		require.NoError(t, err)
		assert.Equal(t, 0.5, booking.RentalHours)
		assert.Equal(t, 5.0, booking.TotalCost)
	})

	t.Run("Write failure keeps in-memory state", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		store.On("SaveBikes", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		store.On("SaveBookings", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		store.On("SaveHistory", mock.Anything, mock.Anything).Return(nil)
		ledger := newLedger(t, store)

		booking, err := ledger.CreateRental(context.Background(), validRental("B1", 2))

		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Len(t, ledger.Bookings(), 1)
		bike, _ := ledger.FindBike("B1")
		assert.False(t, bike.Available)
	})
}

func TestCompleteRental(t *testing.T) {
	t.Run("Completes active rental and frees bike", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		stubSaves(store)
		ledger := newLedger(t, store)
		ctx := context.Background()

		_, err := ledger.CreateRental(ctx, validRental("B1", 2))
		require.NoError(t, err)

		completed, err := ledger.CompleteRental(ctx, "b1")

		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, completed.Status)
		assert.Equal(t, models.StatusCompleted, ledger.Bookings()[0].Status)
		assert.Equal(t, models.StatusActive, ledger.History()[0].Status)
		bike, _ := ledger.FindBike("B1")
		assert.True(t, bike.Available)
		store.AssertNumberOfCalls(t, "SaveBikes", 2)
		store.AssertNumberOfCalls(t, "SaveBookings", 2)
		store.AssertNumberOfCalls(t, "SaveHistory", 1)
	})

	t.Run("No active rental leaves lists unchanged", func(t *testing.T) {
		bookings := []models.Booking{{
			Customer:    models.Customer{FirstName: "Ana", LastName: "Reyes", Phone: "0917"},
			BikeID:      "B2",
			RentalHours: 1,
			TotalCost:   15,
			Status:      models.StatusCompleted,
		}}
		store := mocks.NewLoadedStore(sampleBikes(), bookings, bookings)
		ledger := newLedger(t, store)
		bikesBefore, bookingsBefore, historyBefore := ledger.Bikes(), ledger.Bookings(), ledger.History()

		for _, id := range []string{"B1", "B2", "B404"} {
			completed, err := ledger.CompleteRental(context.Background(), id)
			assert.Nil(t, completed)
			assert.ErrorIs(t, err, models.ErrNoActiveRental)
		}

		assert.Equal(t, bikesBefore, ledger.Bikes())
		assert.Equal(t, bookingsBefore, ledger.Bookings())
		assert.Equal(t, historyBefore, ledger.History())
		store.AssertNotCalled(t, "SaveBookings", mock.Anything, mock.Anything)
	})

	t.Run("First active match wins", func(t *testing.T) {
		bookings := []models.Booking{
			{BikeID: "B1", RentalHours: 1, TotalCost: 10, Status: models.StatusCompleted},
			{BikeID: "B1", RentalHours: 2, TotalCost: 20, Status: models.StatusActive},
			{BikeID: "B1", RentalHours: 3, TotalCost: 30, Status: models.StatusActive},
		}
		store := mocks.NewLoadedStore(sampleBikes(), bookings, nil)
		stubSaves(store)
		ledger := newLedger(t, store)

		completed, err := ledger.CompleteRental(context.Background(), "B1")

		require.NoError(t, err)
		assert.Equal(t, 2.0, completed.RentalHours)
		got := ledger.Bookings()
		assert.Equal(t, models.StatusCompleted, got[1].Status)
		assert.Equal(t, models.StatusActive, got[2].Status)
	})
}

func TestDeleteBooking(t *testing.T) {
	rentedBikes := func() []models.BikeDetails {
		bikes := sampleBikes()
		bikes[0].Available = false
		return bikes
	}
	bookings := func() []models.Booking {
		return []models.Booking{
			{BikeID: "B1", RentalHours: 2, TotalCost: 20, Status: models.StatusActive},
			{BikeID: "B2", RentalHours: 1, TotalCost: 15, Status: models.StatusCompleted},
		}
	}

	t.Run("Deleting active booking restores availability", func(t *testing.T) {
		store := mocks.NewLoadedStore(rentedBikes(), bookings(), bookings())
		stubSaves(store)
		ledger := newLedger(t, store)

		removed, err := ledger.DeleteBooking(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, "B1", removed.BikeID)
		assert.Len(t, ledger.Bookings(), 1)
		assert.Len(t, ledger.History(), 2)
		bike, _ := ledger.FindBike("B1")
		assert.True(t, bike.Available)
		store.AssertNumberOfCalls(t, "SaveBookings", 1)
		store.AssertNumberOfCalls(t, "SaveBikes", 1)
		store.AssertNotCalled(t, "SaveHistory", mock.Anything, mock.Anything)
	})

	t.Run("Deleting completed booking leaves inventory unchanged", func(t *testing.T) {
		store := mocks.NewLoadedStore(rentedBikes(), bookings(), nil)
		stubSaves(store)
		ledger := newLedger(t, store)
		before := ledger.Bikes()

		removed, err := ledger.DeleteBooking(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, removed.Status)
		assert.Equal(t, before, ledger.Bikes())
		assert.Equal(t, "B1", ledger.Bookings()[0].BikeID)
	})

	t.Run("Index out of range", func(t *testing.T) {
		for _, index := range []int{0, -1, 3} {
			store := mocks.NewLoadedStore(rentedBikes(), bookings(), nil)
			ledger := newLedger(t, store)

			removed, err := ledger.DeleteBooking(context.Background(), index)

			assert.Nil(t, removed)
			assert.ErrorIs(t, err, models.ErrInvalidIndex)
			assert.Len(t, ledger.Bookings(), 2)
		}
	})
}

func TestAddAndDeleteBike(t *testing.T) {
	t.Run("Add then delete removes the identifier", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		stubSaves(store)
		ledger := newLedger(t, store)
		ctx := context.Background()

		added, err := ledger.AddBike(ctx, models.BikeRequest{
			BikeID: "B3", BikeType: "City", Size: "S", Color: "Green", RentalPrice: 8,
		})
		require.NoError(t, err)
		assert.True(t, added.Available)
		assert.Len(t, ledger.Bikes(), 3)

		removed, err := ledger.DeleteBike(ctx, "b3")
		require.NoError(t, err)
		assert.Equal(t, "B3", removed.BikeID)

		_, found := ledger.FindBike("B3")
		assert.False(t, found)
		store.AssertNumberOfCalls(t, "SaveBikes", 2)
	})

	t.Run("Duplicate identifiers resolve to first match", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		stubSaves(store)
		ledger := newLedger(t, store)
		ctx := context.Background()

		_, err := ledger.AddBike(ctx, models.BikeRequest{
			BikeID: "b2", BikeType: "Tandem", Size: "XL", Color: "White", RentalPrice: 30,
		})
		require.NoError(t, err)

		bike, found := ledger.FindBike("B2")
		require.True(t, found)
		assert.Equal(t, "Road", bike.BikeType)

		_, err = ledger.DeleteBike(ctx, "B2")
		require.NoError(t, err)
		bike, found = ledger.FindBike("B2")
		require.True(t, found)
		assert.Equal(t, "Tandem", bike.BikeType)
	})

	t.Run("Invalid bike rejected", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		ledger := newLedger(t, store)

		_, err := ledger.AddBike(context.Background(), models.BikeRequest{
			BikeID: "B3", BikeType: "City", Size: "S", Color: "Green", RentalPrice: -1,
		})

		assert.Error(t, err)
		assert.Len(t, ledger.Bikes(), 2)
	})

	t.Run("Delete unknown bike", func(t *testing.T) {
		store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
		ledger := newLedger(t, store)

		removed, err := ledger.DeleteBike(context.Background(), "B404")

		assert.Nil(t, removed)
		assert.ErrorIs(t, err, models.ErrBikeNotFound)
		assert.Len(t, ledger.Bikes(), 2)
	})

	t.Run("Delete does not cascade to bookings", func(t *testing.T) {
		bookings := []models.Booking{{BikeID: "B2", RentalHours: 1, TotalCost: 15, Status: models.StatusActive}}
		store := mocks.NewLoadedStore(sampleBikes(), bookings, nil)
		stubSaves(store)
		ledger := newLedger(t, store)

		_, err := ledger.DeleteBike(context.Background(), "B2")

		require.NoError(t, err)
		assert.Len(t, ledger.Bookings(), 1)
	})
}

func TestAccessorsReturnCopies(t *testing.T) {
	store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
	ledger := newLedger(t, store)

	bikes := ledger.Bikes()
	bikes[0].Available = false

	bike, _ := ledger.FindBike("B1")
	assert.True(t, bike.Available)
}

func TestSave(t *testing.T) {
	store := mocks.NewLoadedStore(sampleBikes(), nil, nil)
	stubSaves(store)
	ledger := newLedger(t, store)

	ledger.Save(context.Background())

	store.AssertNumberOfCalls(t, "SaveBikes", 1)
	store.AssertNumberOfCalls(t, "SaveBookings", 1)
	store.AssertNumberOfCalls(t, "SaveHistory", 1)
	store.AssertExpectations(t)
}

func TestLedgerPersistsThroughJSONRepository(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	repo := repository.NewJSONRepository(dir, repository.Files{}, discardLogger())
	require.NoError(t, repo.SaveBikes(ctx, sampleBikes()[:1]))

	ledger := service.NewLedgerService(ctx, repo, validator.NewCustomValidator(), discardLogger())
	booking, err := ledger.CreateRental(ctx, validRental("B1", 2))
	require.NoError(t, err)

	reloaded := service.NewLedgerService(ctx,
		repository.NewJSONRepository(dir, repository.Files{}, discardLogger()),
		validator.NewCustomValidator(), discardLogger())

	assert.Equal(t, []models.Booking{*booking}, reloaded.Bookings())
	assert.Equal(t, []models.Booking{*booking}, reloaded.History())
	bike, found := reloaded.FindBike("B1")
	require.True(t, found)
	assert.False(t, bike.Available)
	assert.FileExists(t, filepath.Join(dir, repository.DefaultHistoryFile))
}
