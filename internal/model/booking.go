package model

import "time"

// Booking statuses.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a user's purchase of Seats tickets for a show.
// TotalPrice is fixed at booking time from the show's ticket price.
type Booking struct {
	ID         uint64    `json:"_id"`
	Code       string    `json:"code"`
	UserID     uint64    `json:"user"`
	ShowID     uint64    `json:"show"`
	Seats      int       `json:"seats"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
