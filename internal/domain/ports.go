package domain

import (
	"context"
	"time"
)

type ApartmentRepository interface {
	Insert(ctx context.Context, a Apartment) error
	GetByID(ctx context.Context, id string) (ApartmentView, error)
	List(ctx context.Context, q ApartmentsQuery) ([]ApartmentView, int, error)
}

// BookingRepository owns booking persistence. Reserve must run the
// overlap check and the insert as one atomic unit: no other writer may
// slip a conflicting booking for the same apartment in between.
type BookingRepository interface {
	Reserve(ctx context.Context, apartmentID, guestID string, start, end time.Time) (Booking, error)
	ListForApartment(ctx context.Context, apartmentID string) ([]Booking, error)
}

type UserRepository interface {
	Insert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenCodec issues and verifies opaque bearer tokens.
type TokenCodec interface {
	Issue(u User) (string, error)
	Verify(token string) (TokenClaims, error)
}

// Read queries

type ApartmentsQuery struct {
	Location  *string  // case-insensitive equality
	MinPrice  *float64 // inclusive
	MaxPrice  *float64 // inclusive
	Amenities []string // apartment must contain all of these
	Page      int      // 1-indexed
	PageSize  *int     // nil means "no pagination requested"
}

// Limit and Offset derive the SQL window; a nil PageSize means
// everything in one page.
func (q ApartmentsQuery) Limit() int {
	if q.PageSize == nil {
		return 0
	}
	return *q.PageSize
}

func (q ApartmentsQuery) Offset() int {
	if q.PageSize == nil || q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * *q.PageSize
}

type ApartmentsPage struct {
	Items      []ApartmentView `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
