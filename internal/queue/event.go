// Package queue carries booking events over RabbitMQ: the payload type, a
// publisher used by the booking service and a reconnecting consumer that
// sends the confirmation mail.
package queue

import "time"

// BookingConfirmedQueue is the durable queue name.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking commits. It carries
// everything the confirmation mail needs so the consumer never queries the
// database.
type BookingConfirmedEvent struct {
	BookingID   uint64    `json:"booking_id"`
	Code        string    `json:"code"`
	UserID      uint64    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	ShowID      uint64    `json:"show_id"`
	ShowTitle   string    `json:"show_title"`
	TheatreName string    `json:"theatre_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Seats       int       `json:"seats"`
	TotalPrice  float64   `json:"total_price"`
	TicketURL   string    `json:"ticket_url"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
