package domain

import "time"

// Booking is an immutable financial record. TotalPrice is snapshotted at
// creation time; later price changes on the apartment never touch it.
type Booking struct {
	ID          string    `json:"id"`
	ApartmentID string    `json:"apartmentId"`
	GuestID     string    `json:"guestId"`
	GuestName   string    `json:"guestName"` // denormalized for the caller's convenience
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (b Booking) Nights() int { return Nights(b.StartDate, b.EndDate) }
