package model

import "time"

// Show is a scheduled screening at one theatre with its own price and
// seat inventory. SeatsBooked never exceeds TotalSeats.
type Show struct {
	ID          uint64    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Poster      string    `json:"poster"`
	Language    string    `json:"language"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"` // HH:MM
	TicketPrice float64   `json:"ticketPrice"`
	TotalSeats  int       `json:"totalSeats"`
	SeatsBooked int       `json:"seatsBooked"`
	TheatreID   uint64    `json:"theatre"`
	Theatre     *Theatre  `json:"theatreDetails,omitempty"`
	Casts       []Credit  `json:"casts"`
	Crews       []Credit  `json:"crews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SeatsAvailable is the remaining inventory.
func (s Show) SeatsAvailable() int {
	if s.SeatsBooked >= s.TotalSeats {
		return 0
	}
	return s.TotalSeats - s.SeatsBooked
}

// ShowFilter narrows show listings. Zero values disable a filter.
type ShowFilter struct {
	TheatreID uint64
	Date      string
	Title     string
}
