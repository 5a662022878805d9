package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stayloft/internal/domain"
)

// BookingService is the reservation engine. The overlap check and the
// insert happen inside the repository's transaction; this layer owns
// range validation and keeps the contract honest even when the HTTP
// layer already validated the payload.
type BookingService struct {
	bookings domain.BookingRepository
}

func NewBookingService(b domain.BookingRepository) *BookingService {
	return &BookingService{bookings: b}
}

// Reserve books [start, end) on an apartment for a guest. Fails with
// domain.ErrInvalid on a non-chronological range, domain.ErrNotFound
// when the apartment or guest is absent, and domain.ErrConflict when
// the range overlaps an existing booking.
func (s *BookingService) Reserve(ctx context.Context, apartmentID, guestID string, start, end time.Time) (domain.Booking, error) {
	if apartmentID == "" || guestID == "" {
		return domain.Booking{}, fmt.Errorf("%w: apartment and guest ids are required", domain.ErrInvalid)
	}

	start, end = domain.ToDay(start), domain.ToDay(end)

	// Re-derive the night count from the same two dates the repository
	// will persist; a zero-night or reversed range never reaches the DB.
	if domain.Nights(start, end) < 1 {
		return domain.Booking{}, fmt.Errorf("%w: endDate must be after startDate", domain.ErrInvalid)
	}

	b, err := s.bookings.Reserve(ctx, apartmentID, guestID, start, end)
	if err != nil {
		return domain.Booking{}, err
	}

	log.Info().
		Str("booking", b.ID).
		Str("apartment", b.ApartmentID).
		Str("guest", b.GuestID).
		Int("nights", b.Nights()).
		Float64("total", b.TotalPrice).
		Msg("booking reserved")
	return b, nil
}

// ListForApartment returns the apartment's bookings ordered by ascending
// start date; an apartment with none yields an empty slice, not an error.
func (s *BookingService) ListForApartment(ctx context.Context, apartmentID string) ([]domain.Booking, error) {
	if apartmentID == "" {
		return nil, fmt.Errorf("%w: apartment id is required", domain.ErrInvalid)
	}
	return s.bookings.ListForApartment(ctx, apartmentID)
}
