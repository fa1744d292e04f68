package mail_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	tafelmail "github.com/aretw0/tafel/pkg/adapters/mail"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	from string
	to   []string
	msg  []byte
}

func testConfig(t *testing.T) tafelmail.Config {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return tafelmail.Config{
		Host:           "smtp.example.de",
		Port:           465,
		Sender:         "bot@restaurant.de",
		Password:       "secret",
		Receiver:       "chef@restaurant.de",
		AttachCalendar: true,
		Location:       berlin,
		Address:        "Musterstraße 12, 10115 Berlin",
		EventDuration:  2 * time.Hour,
	}
}

func testReservation() domain.Reservation {
	return domain.Reservation{
		Name:     "Erika Mustermann",
		Email:    "erika@example.de",
		Persons:  4,
		DateTime: "15.10.2025 19:30",
		Wish:     "Fensterplatz",
	}
}

func newNotifier(t *testing.T, cfg tafelmail.Config, out *[]sent) *tafelmail.Notifier {
	t.Helper()
	fixed := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	return tafelmail.New(cfg,
		tafelmail.WithTransport(tafelmail.TransportFunc(func(_ context.Context, from string, to []string, msg []byte) error {
			*out = append(*out, sent{from: from, to: to, msg: msg})
			return nil
		})),
		tafelmail.WithClock(func() time.Time { return fixed }),
		tafelmail.WithUIDGenerator(func() string { return "uid-1" }),
	)
}

// parts splits the sent message into decoded MIME parts keyed by media type.
func parts(t *testing.T, raw []byte) (*mail.Message, map[string]string) {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	out := map[string]string{}
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)

		partType, _, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
		require.NoError(t, err)
		if p.Header.Get("Content-Transfer-Encoding") == "base64" {
			data, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(string(data), "\r\n", ""))
			require.NoError(t, err)
			assert.Equal(t, "Termin.ics", p.FileName())
		}
		out[partType] = string(data)
	}
	return msg, out
}

func TestNotify_SendsMessageWithCalendar(t *testing.T) {
	var out []sent
	n := newNotifier(t, testConfig(t), &out)

	require.NoError(t, n.Notify(context.Background(), testReservation()))
	require.Len(t, out, 1)
	assert.Equal(t, "bot@restaurant.de", out[0].from)
	assert.Equal(t, []string{"chef@restaurant.de"}, out[0].to)

	msg, body := parts(t, out[0].msg)
	assert.Equal(t, "Neue Reservierungsanfrage", msg.Header.Get("Subject"))
	assert.Equal(t, "bot@restaurant.de", msg.Header.Get("From"))
	assert.Equal(t, "chef@restaurant.de", msg.Header.Get("To"))
	assert.Equal(t, "erika@example.de", msg.Header.Get("Reply-To"))

	text := body["text/plain"]
	for _, want := range []string{"Name: Erika Mustermann", "E-Mail: erika@example.de", "Personen: 4", "Datum & Uhrzeit: 15.10.2025 19:30", "Wunsch: Fensterplatz", "Geschäftsführer"} {
		assert.Contains(t, text, want)
	}

	cal := body["text/calendar"]
	assert.Contains(t, cal, "BEGIN:VEVENT")
	assert.Contains(t, cal, "UID:uid-1")
	// 19:30 CEST
	assert.Contains(t, cal, "DTSTART:20251015T173000Z")
	assert.Contains(t, cal, "DTEND:20251015T193000Z")
	assert.Contains(t, cal, "SUMMARY:Reservierung von Erika Mustermann")
	assert.Contains(t, cal, "Musterstraße 12")
	assert.Contains(t, cal, "METHOD:REQUEST")
}

func TestNotify_WithoutCalendar(t *testing.T) {
	cfg := testConfig(t)
	cfg.AttachCalendar = false
	var out []sent
	n := newNotifier(t, cfg, &out)

	r := testReservation()
	r.DateTime = "morgen abend"
	r.Wish = ""
	require.NoError(t, n.Notify(context.Background(), r))

	_, body := parts(t, out[0].msg)
	assert.NotContains(t, body, "text/calendar")
	assert.Contains(t, body["text/plain"], "Datum & Uhrzeit: morgen abend")
	assert.Contains(t, body["text/plain"], "Wunsch: -")
}

func TestNotify_NotConfigured(t *testing.T) {
	for _, mutate := range []func(*tafelmail.Config){
		func(c *tafelmail.Config) { c.Sender = "" },
		func(c *tafelmail.Config) { c.Password = "" },
		func(c *tafelmail.Config) { c.Receiver = "" },
	} {
		cfg := testConfig(t)
		mutate(&cfg)
		var out []sent
		n := newNotifier(t, cfg, &out)

		err := n.Notify(context.Background(), testReservation())
		assert.ErrorIs(t, err, tafelmail.ErrNotConfigured)
		assert.Empty(t, out)
	}
}

func TestNotify_InvalidDateTime(t *testing.T) {
	var out []sent
	n := newNotifier(t, testConfig(t), &out)

	r := testReservation()
	r.DateTime = "nächsten Freitag"
	err := n.Notify(context.Background(), r)
	assert.ErrorIs(t, err, tafelmail.ErrInvalidDateTime)
	assert.Empty(t, out)
}

func TestNotify_ShortDateForms(t *testing.T) {
	var out []sent
	n := newNotifier(t, testConfig(t), &out)

	r := testReservation()
	r.DateTime = "5.3.2026 9:05"
	require.NoError(t, n.Notify(context.Background(), r))

	_, body := parts(t, out[0].msg)
	// CET in March
	assert.Contains(t, body["text/calendar"], "DTSTART:20260305T080500Z")
}

func TestNotify_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	n := tafelmail.New(testConfig(t), tafelmail.WithTransport(tafelmail.TransportFunc(
		func(context.Context, string, []string, []byte) error { return boom },
	)))

	err := n.Notify(context.Background(), testReservation())
	assert.ErrorIs(t, err, boom)
}

func TestSMTPTransport_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &tafelmail.SMTPTransport{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p"}
	err := tr.Send(ctx, "a@b.de", []string{"c@d.de"}, []byte("x"))
	assert.Error(t, err)
}
