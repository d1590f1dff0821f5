package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	models "github.com/pedalhub/pedalhub/internal"
	"github.com/pedalhub/pedalhub/internal/ports"
)

type Validator interface {
	Validate(i interface{}) error
}

type ledgerService struct {
	store    ports.Store
	validate Validator
	logger   *slog.Logger

	bikes    []models.BikeDetails
	bookings []models.Booking
	history  []models.Booking
}

// NewLedgerService loads all three lists from store. The returned ledger is
// the only owner of that state until Save is called at shutdown.
func NewLedgerService(ctx context.Context, store ports.Store, validate Validator, logger *slog.Logger) *ledgerService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ledgerService{
		store:    store,
		validate: validate,
		logger:   logger,
		bikes:    store.LoadBikes(ctx),
		bookings: store.LoadBookings(ctx),
		history:  store.LoadHistory(ctx),
	}
	logger.Info("ledger loaded",
		"bikes", len(s.bikes),
		"bookings", len(s.bookings),
		"history", len(s.history))
	return s
}

func (s *ledgerService) CreateRental(ctx context.Context, request models.RentalRequest) (*models.Booking, error) {
	if request.Hours <= 0 {
		return nil, fmt.Errorf("rental of %q: %w", request.BikeID, models.ErrInvalidDuration)
	}
	if s.validate != nil {
		if err := s.validate.Validate(request); err != nil {
			return nil, fmt.Errorf("invalid rental request: %w", err)
		}
	}

	i := s.bikeIndex(request.BikeID)
	if i < 0 {
		return nil, fmt.Errorf("bike %q: %w", request.BikeID, models.ErrBikeNotFound)
	}
	bike := &s.bikes[i]
	if !bike.Available {
		return nil, fmt.Errorf("bike %q: %w", bike.BikeID, models.ErrBikeUnavailable)
	}

	booking := models.Booking{
		ID: uuid.New(),
		Customer: models.Customer{
			FirstName: request.FirstName,
			LastName:  request.LastName,
			Phone:     request.Phone,
		},
		BikeID:      bike.BikeID,
		RentalHours: request.Hours,
		TotalCost:   bike.CalculateRentalCost(request.Hours),
		Status:      models.StatusActive,
	}

	bike.Available = false
	s.bookings = append(s.bookings, booking)
	s.history = append(s.history, booking)

	s.persistBikes(ctx)
	s.persistBookings(ctx)
	s.persistHistory(ctx)

	s.logger.Info("rental created",
		"booking_id", booking.ID,
		"bike_id", booking.BikeID,
		"hours", booking.RentalHours,
		"total_cost", booking.TotalCost)
	return &booking, nil
}

func (s *ledgerService) CompleteRental(ctx context.Context, bikeID string) (*models.Booking, error) {
	for i := range s.bookings {
		booking := &s.bookings[i]
		if !models.SameBikeID(booking.BikeID, bikeID) || booking.Status != models.StatusActive {
			continue
		}

		booking.Status = models.StatusCompleted
		if j := s.bikeIndex(bikeID); j >= 0 {
			s.bikes[j].Available = true
		}

		s.persistBikes(ctx)
		s.persistBookings(ctx)

		s.logger.Info("rental completed", "booking_id", booking.ID, "bike_id", booking.BikeID)
		completed := *booking
		return &completed, nil
	}
	return nil, fmt.Errorf("bike %q: %w", bikeID, models.ErrNoActiveRental)
}

// DeleteBooking removes the booking at 1-based position index.
func (s *ledgerService) DeleteBooking(ctx context.Context, index int) (*models.Booking, error) {
	if index < 1 || index > len(s.bookings) {
		return nil, fmt.Errorf("booking %d of %d: %w", index, len(s.bookings), models.ErrInvalidIndex)
	}

	removed := s.bookings[index-1]
	s.bookings = append(s.bookings[:index-1], s.bookings[index:]...)

	if removed.Status == models.StatusActive {
		if j := s.bikeIndex(removed.BikeID); j >= 0 {
			s.bikes[j].Available = true
		}
	}

	s.persistBookings(ctx)
	s.persistBikes(ctx)

	s.logger.Info("booking deleted",
		"index", index,
		"booking_id", removed.ID,
		"bike_id", removed.BikeID,
		"status", removed.Status)
	return &removed, nil
}

// AddBike appends a new available bike. Identifiers are not checked for
// uniqueness; lookups resolve duplicates to the first entry.
func (s *ledgerService) AddBike(ctx context.Context, request models.BikeRequest) (*models.BikeDetails, error) {
	if s.validate != nil {
		if err := s.validate.Validate(request); err != nil {
			return nil, fmt.Errorf("invalid bike: %w", err)
		}
	}

	bike := models.NewBikeDetails(request)
	s.bikes = append(s.bikes, bike)
	s.persistBikes(ctx)

	s.logger.Info("bike added", "bike_id", bike.BikeID, "rental_price", bike.RentalPrice)
	return &bike, nil
}

// DeleteBike removes the first matching bike. Bookings that reference it are
// left as they are.
func (s *ledgerService) DeleteBike(ctx context.Context, bikeID string) (*models.BikeDetails, error) {
	i := s.bikeIndex(bikeID)
	if i < 0 {
		return nil, fmt.Errorf("bike %q: %w", bikeID, models.ErrBikeNotFound)
	}

	removed := s.bikes[i]
	s.bikes = append(s.bikes[:i], s.bikes[i+1:]...)
	s.persistBikes(ctx)

	s.logger.Info("bike deleted", "bike_id", removed.BikeID)
	return &removed, nil
}

func (s *ledgerService) FindBike(bikeID string) (*models.BikeDetails, bool) {
	i := s.bikeIndex(bikeID)
	if i < 0 {
		return nil, false
	}
	bike := s.bikes[i]
	return &bike, true
}

func (s *ledgerService) Bikes() []models.BikeDetails {
	return append([]models.BikeDetails(nil), s.bikes...)
}

func (s *ledgerService) Bookings() []models.Booking {
	return append([]models.Booking(nil), s.bookings...)
}

func (s *ledgerService) History() []models.Booking {
	return append([]models.Booking(nil), s.history...)
}

// Save writes all three lists.
func (s *ledgerService) Save(ctx context.Context) {
	s.persistBikes(ctx)
	s.persistBookings(ctx)
	s.persistHistory(ctx)
}

func (s *ledgerService) bikeIndex(bikeID string) int {
	for i := range s.bikes {
		if models.SameBikeID(s.bikes[i].BikeID, bikeID) {
			return i
		}
	}
	return -1
}

// Write failures are logged and swallowed: the in-memory lists stay
// authoritative for the rest of the process.
func (s *ledgerService) persistBikes(ctx context.Context) {
	if err := s.store.SaveBikes(ctx, s.bikes); err != nil {
		s.logger.Error("saving bike inventory", "err", err)
	}
}

func (s *ledgerService) persistBookings(ctx context.Context) {
	if err := s.store.SaveBookings(ctx, s.bookings); err != nil {
		s.logger.Error("saving bookings", "err", err)
	}
}

func (s *ledgerService) persistHistory(ctx context.Context) {
	if err := s.store.SaveHistory(ctx, s.history); err != nil {
		s.logger.Error("saving rental history", "err", err)
	}
}
