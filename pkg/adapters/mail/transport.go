package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// Transport hands a rendered message to a mail server.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, from string, to []string, msg []byte) error

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, from string, to []string, msg []byte) error {
	return f(ctx, from, to, msg)
}

// SMTPTransport submits mail over SMTP with implicit TLS (SMTPS, usually port 465).
// The context deadline applies to the whole exchange.
type SMTPTransport struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSConfig *tls.Config
}

// Send dials the server, authenticates with PLAIN and transmits msg.
func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))

	cfg := t.TLSConfig
	if cfg == nil {
		cfg = &tls.Config{ServerName: t.Host, MinVersion: tls.VersionTLS12}
	}
	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// Unblock the exchange if ctx is cancelled mid-way.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", t.Username, t.Password, t.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp DATA end: %w", err)
	}
	return c.Quit()
}
