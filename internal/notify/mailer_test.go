package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/movie-ticket-booking/internal/queue"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func TestSendBookingConfirmation(t *testing.T) {
	s := &captureSender{}
	m := NewMailerWithSender("tickets@cinema.example", s, zap.NewNop())

	ev := queue.BookingConfirmedEvent{
		BookingID: 1, Code: "BK-0123456789", UserName: "Ann", UserEmail: "ann@example.com",
		ShowTitle: "Heat", TheatreName: "Grand", Date: "2024-07-01", Time: "20:30", Seats: 2, TotalPrice: 24,
	}
	require.NoError(t, m.SendBookingConfirmation(context.Background(), ev))
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, []string{"ann@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Booking confirmed #BK-0123456789"}, msg.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), `filename="ticket-BK-0123456789.png"`)
	assert.Contains(t, raw.String(), "image/png")
}

func TestSendBookingConfirmationSkipsMissingRecipient(t *testing.T) {
	s := &captureSender{}
	m := NewMailerWithSender("x@example.com", s, zap.NewNop())
	require.NoError(t, m.SendBookingConfirmation(context.Background(), queue.BookingConfirmedEvent{Code: "BK-1"}))
	assert.Empty(t, s.sent)
}

func TestSendBookingConfirmationSurfacesSendError(t *testing.T) {
	s := &captureSender{err: errors.New("connection refused")}
	m := NewMailerWithSender("x@example.com", s, zap.NewNop())
	err := m.SendBookingConfirmation(context.Background(), queue.BookingConfirmedEvent{Code: "BK-1", UserEmail: "a@b.co"})
	assert.ErrorContains(t, err, "connection refused")
}
