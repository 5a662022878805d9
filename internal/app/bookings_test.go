package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"stayloft/internal/app"
	"stayloft/internal/domain"
)

// memBookingRepo emulates the repository contract in memory: apartment
// and guest resolution, the half-open overlap rule, and the price
// snapshot. It is not safe for concurrent use; the MySQL integration
// test covers the race.
type memBookingRepo struct {
	prices   map[string]float64 // apartment id -> nightly price
	guests   map[string]string  // guest id -> name
	bookings []domain.Booking
}

func (m *memBookingRepo) Reserve(_ context.Context, apartmentID, guestID string, start, end time.Time) (domain.Booking, error) {
	price, ok := m.prices[apartmentID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("apartment: %w", domain.ErrNotFound)
	}
	name, ok := m.guests[guestID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("guest: %w", domain.ErrNotFound)
	}
	for _, b := range m.bookings {
		if b.ApartmentID == apartmentID && domain.Overlaps(start, end, b.StartDate, b.EndDate) {
			return domain.Booking{}, domain.ErrConflict
		}
	}
	b := domain.Booking{
		ID:          fmt.Sprintf("b-%d", len(m.bookings)+1),
		ApartmentID: apartmentID,
		GuestID:     guestID,
		GuestName:   name,
		StartDate:   start,
		EndDate:     end,
		TotalPrice:  float64(domain.Nights(start, end)) * price,
		CreatedAt:   time.Now().UTC(),
	}
	m.bookings = append(m.bookings, b)
	return b, nil
}

func (m *memBookingRepo) ListForApartment(_ context.Context, apartmentID string) ([]domain.Booking, error) {
	out := []domain.Booking{}
	for _, b := range m.bookings {
		if b.ApartmentID == apartmentID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func newBookingFixture() (*app.BookingService, *memBookingRepo) {
	repo := &memBookingRepo{
		prices: map[string]float64{"apt-1": 120.50, "apt-2": 80},
		guests: map[string]string{"guest-1": "Ana", "guest-2": "Ben"},
	}
	return app.NewBookingService(repo), repo
}

func TestReserve_ComputesSnapshotPrice(t *testing.T) {
	svc, _ := newBookingFixture()

	b, err := svc.Reserve(context.Background(), "apt-1", "guest-1", day("2024-06-01"), day("2024-06-05"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.Nights() != 4 {
		t.Fatalf("nights = %d, want 4", b.Nights())
	}
	if b.TotalPrice != 4*120.50 {
		t.Fatalf("totalPrice = %v, want %v", b.TotalPrice, 4*120.50)
	}
	if b.GuestName != "Ana" {
		t.Fatalf("guestName = %q, want Ana", b.GuestName)
	}
}

func TestReserve_RejectsNonChronologicalRange(t *testing.T) {
	svc, repo := newBookingFixture()

	for _, c := range [][2]string{
		{"2024-06-05", "2024-06-05"}, // zero nights
		{"2024-06-05", "2024-06-01"}, // reversed
	} {
		_, err := svc.Reserve(context.Background(), "apt-1", "guest-1", day(c[0]), day(c[1]))
		if !errors.Is(err, domain.ErrInvalid) {
			t.Errorf("Reserve(%s,%s): err = %v, want ErrInvalid", c[0], c[1], err)
		}
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("invalid ranges must not persist, got %d bookings", len(repo.bookings))
	}
}

func TestReserve_ConflictOnOverlap(t *testing.T) {
	svc, repo := newBookingFixture()
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "apt-1", "guest-1", day("2024-08-01"), day("2024-08-05")); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err := svc.Reserve(ctx, "apt-1", "guest-2", day("2024-08-03"), day("2024-08-06"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("conflicting reserve must not persist, got %d bookings", len(repo.bookings))
	}
}

func TestReserve_BackToBackRangesBothSucceed(t *testing.T) {
	svc, _ := newBookingFixture()
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "apt-1", "guest-1", day("2024-06-01"), day("2024-06-05")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.Reserve(ctx, "apt-1", "guest-2", day("2024-06-05"), day("2024-06-10")); err != nil {
		t.Fatalf("back-to-back must not conflict: %v", err)
	}
}

func TestReserve_OtherApartmentNeverConflicts(t *testing.T) {
	svc, _ := newBookingFixture()
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "apt-1", "guest-1", day("2024-08-01"), day("2024-08-05")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.Reserve(ctx, "apt-2", "guest-2", day("2024-08-01"), day("2024-08-05")); err != nil {
		t.Fatalf("same dates on another apartment: %v", err)
	}
}

func TestReserve_UnknownApartmentOrGuest(t *testing.T) {
	svc, repo := newBookingFixture()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "nope", "guest-1", day("2024-06-01"), day("2024-06-05"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown apartment: err = %v, want ErrNotFound", err)
	}
	_, err = svc.Reserve(ctx, "apt-1", "nope", day("2024-06-01"), day("2024-06-05"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown guest: err = %v, want ErrNotFound", err)
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("failed reserves must not persist, got %d", len(repo.bookings))
	}
}

func TestListForApartment_OrderedAndEmpty(t *testing.T) {
	svc, _ := newBookingFixture()
	ctx := context.Background()

	// Insert out of chronological order.
	if _, err := svc.Reserve(ctx, "apt-1", "guest-1", day("2024-09-10"), day("2024-09-12")); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Reserve(ctx, "apt-1", "guest-2", day("2024-09-01"), day("2024-09-03")); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	got, err := svc.ListForApartment(ctx, "apt-1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 2 || !got[0].StartDate.Before(got[1].StartDate) {
		t.Fatalf("expected ascending start dates, got %+v", got)
	}

	empty, err := svc.ListForApartment(ctx, "apt-2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %v", empty)
	}
}

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
