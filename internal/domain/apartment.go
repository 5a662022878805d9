package domain

import "time"

type Apartment struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight float64   `json:"pricePerNight"` // > 0, two fractional digits
	Amenities     []string  `json:"amenities"`
	HostID        string    `json:"hostId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ApartmentView is the read model returned to callers: the apartment
// plus the denormalized host display name.
type ApartmentView struct {
	Apartment
	HostName string `json:"hostName"`
}
