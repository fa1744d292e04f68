// Package mail delivers reservations to the restaurant by e-mail.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/google/uuid"
)

// DateTimeLayout is the accepted reservation date format (D.M.YYYY H:MM).
const DateTimeLayout = "2.1.2006 15:04"

var (
	// ErrNotConfigured is returned when sender, password or receiver are missing.
	ErrNotConfigured = errors.New("mail delivery is not configured")
	// ErrInvalidDateTime is returned when the reservation time cannot be parsed for the calendar entry.
	ErrInvalidDateTime = errors.New("invalid reservation date/time")
)

// Config describes the mailbox and the restaurant details written into the message.
type Config struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Receiver string

	// AttachCalendar adds a Termin.ics attachment with one event.
	AttachCalendar bool
	// Location is the restaurant time zone; nil means time.Local.
	Location      *time.Location
	Address       string
	EventDuration time.Duration
}

// Configured reports whether the credentials required for delivery are present.
func (c Config) Configured() bool {
	return c.Sender != "" && c.Password != "" && c.Receiver != ""
}

// Notifier sends one e-mail per reservation.
type Notifier struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
	newUID    func() string
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithTransport replaces the SMTP transport (used by tests).
func WithTransport(t Transport) Option {
	return func(n *Notifier) {
		n.transport = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithClock overrides the time source for the Date header and event stamps.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// WithUIDGenerator overrides the calendar event UID source.
func WithUIDGenerator(gen func() string) Option {
	return func(n *Notifier) {
		n.newUID = gen
	}
}

// New creates a Notifier. Without WithTransport it sends over SMTP with implicit TLS.
func New(cfg Config, opts ...Option) *Notifier {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = 2 * time.Hour
	}
	n := &Notifier{
		cfg:    cfg,
		logger: logging.NewNop(),
		now:    time.Now,
		newUID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.transport == nil {
		n.transport = &SMTPTransport{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Sender,
			Password: cfg.Password,
		}
	}
	return n
}

// Notify composes and sends the reservation mail.
func (n *Notifier) Notify(ctx context.Context, r domain.Reservation) error {
	if !n.cfg.Configured() {
		return ErrNotConfigured
	}

	msg, err := n.Compose(r)
	if err != nil {
		return err
	}

	if err := n.transport.Send(ctx, n.cfg.Sender, []string{n.cfg.Receiver}, msg); err != nil {
		return fmt.Errorf("failed to send reservation mail: %w", err)
	}
	n.logger.Debug("reservation mail sent", "receiver", n.cfg.Receiver, "bytes", len(msg))
	return nil
}

// Compose renders the complete MIME message for r.
func (n *Notifier) Compose(r domain.Reservation) ([]byte, error) {
	var ics []byte
	if n.cfg.AttachCalendar {
		start, err := time.ParseInLocation(DateTimeLayout, r.DateTime, n.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDateTime, r.DateTime, err)
		}
		ics = []byte(n.calendar(r, start))
	}

	var buf bytes.Buffer
	if err := writeMessage(&buf, message{
		From:    n.cfg.Sender,
		To:      n.cfg.Receiver,
		ReplyTo: r.Email,
		Subject: "Neue Reservierungsanfrage",
		Date:    n.now(),
		Body:    body(r),
		ICS:     ics,
	}); err != nil {
		return nil, fmt.Errorf("failed to compose reservation mail: %w", err)
	}
	return buf.Bytes(), nil
}

func body(r domain.Reservation) string {
	wish := r.Wish
	if wish == "" {
		wish = "-"
	}
	return fmt.Sprintf("Hallo Geschäftsführer,\r\n\r\n"+
		"Sie haben eine neue Reservierungsanfrage erhalten:\r\n\r\n"+
		"Name: %s\r\n"+
		"E-Mail: %s\r\n"+
		"Personen: %d\r\n"+
		"Datum & Uhrzeit: %s\r\n"+
		"Wunsch: %s\r\n\r\n"+
		"Bitte bestätigen Sie diese Reservierung manuell im Kalender oder kontaktieren Sie den Kunden direkt.\r\n",
		r.Name, r.Email, r.Persons, r.DateTime, wish)
}
