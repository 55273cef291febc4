// Package notify sends booking confirmation mail.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer renders and sends the confirmation mail for a booking, with the
// ticket QR code attached as a PNG.
type Mailer struct {
	from   string
	sender Sender
	tmpl   *template.Template
	qrSize int
	log    *zap.Logger
}

func NewMailer(cfg SMTPConfig, log *zap.Logger) *Mailer {
	return NewMailerWithSender(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log)
}

func NewMailerWithSender(from string, s Sender, log *zap.Logger) *Mailer {
	return &Mailer{
		from:   from,
		sender: s,
		tmpl:   template.Must(template.New("booking").Parse(bookingTemplate)),
		qrSize: 256,
		log:    log.Named("mailer"),
	}
}

const bookingTemplate = `<h2>Your booking is confirmed</h2>
<p>Hi {{if .UserName}}{{.UserName}}{{else}}there{{end}},</p>
<p>Booking <strong>{{.Code}}</strong> for <strong>{{.ShowTitle}}</strong>{{if .TheatreName}} at {{.TheatreName}}{{end}}.</p>
<ul>
<li>Date: {{.Date}} {{.Time}}</li>
<li>Seats: {{.Seats}}</li>
<li>Total: {{printf "%.2f" .TotalPrice}}</li>
</ul>
{{if .TicketURL}}<p><a href="{{.TicketURL}}">View your ticket</a></p>{{end}}
<p>Show the attached QR code at the entrance.</p>
`

// SendBookingConfirmation has the queue.Handler signature so it can be
// plugged straight into the consumer.
func (m *Mailer) SendBookingConfirmation(_ context.Context, ev queue.BookingConfirmedEvent) error {
	if ev.UserEmail == "" {
		m.log.Warn("booking without recipient, skipping mail", zap.String("code", ev.Code))
		return nil
	}
	msg, err := m.compose(ev)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Info("confirmation mail sent", zap.String("code", ev.Code), zap.String("to", ev.UserEmail))
	return nil
}

func (m *Mailer) compose(ev queue.BookingConfirmedEvent) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, ev); err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}
	content := ev.TicketURL
	if content == "" {
		content = ev.Code
	}
	png, err := utils.TicketQR(content, m.qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", ev.UserEmail)
	msg.SetHeader("Subject", "Booking confirmed #"+ev.Code)
	msg.SetBody("text/html", body.String())
	msg.Attach("ticket-"+ev.Code+".png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}), gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}))
	return msg, nil
}
