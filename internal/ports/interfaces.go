package ports

import (
	"context"

	models "github.com/pedalhub/pedalhub/internal"
)

// Store persists the three ledger lists. Loads never fail: a missing or
// corrupt file yields an empty list.
type Store interface {
	LoadBikes(ctx context.Context) []models.BikeDetails
	LoadBookings(ctx context.Context) []models.Booking
	LoadHistory(ctx context.Context) []models.Booking
	SaveBikes(ctx context.Context, bikes []models.BikeDetails) error
	SaveBookings(ctx context.Context, bookings []models.Booking) error
	SaveHistory(ctx context.Context, history []models.Booking) error
}

type LedgerService interface {
	CreateRental(ctx context.Context, request models.RentalRequest) (*models.Booking, error)
	CompleteRental(ctx context.Context, bikeID string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, index int) (*models.Booking, error)
	AddBike(ctx context.Context, request models.BikeRequest) (*models.BikeDetails, error)
	DeleteBike(ctx context.Context, bikeID string) (*models.BikeDetails, error)
	FindBike(bikeID string) (*models.BikeDetails, bool)
	Bikes() []models.BikeDetails
	Bookings() []models.Booking
	History() []models.Booking
	Save(ctx context.Context)
}

type Authenticator interface {
	Authenticate(username, password string) bool
}

type HistoryExporter interface {
	Export(history []models.Booking) (string, error)
}
