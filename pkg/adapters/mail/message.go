package mail

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"time"
)

type message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Date    time.Time
	Body    string
	ICS     []byte
}

func writeMessage(w io.Writer, m message) error {
	mw := multipart.NewWriter(w)

	header := fmt.Sprintf("From: %s\r\nTo: %s\r\n", m.From, m.To)
	if m.ReplyTo != "" {
		header += fmt.Sprintf("Reply-To: %s\r\n", m.ReplyTo)
	}
	header += fmt.Sprintf("Subject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		mime.QEncoding.Encode("utf-8", m.Subject), m.Date.Format(time.RFC1123Z), mw.Boundary())
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(text)
	if _, err := io.WriteString(qp, m.Body); err != nil {
		return err
	}
	if err := qp.Close(); err != nil {
		return err
	}

	if len(m.ICS) > 0 {
		att, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {`text/calendar; charset=utf-8; method=REQUEST; name="Termin.ics"`},
			"Content-Disposition":       {`attachment; filename="Termin.ics"`},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return err
		}
		if err := writeBase64Lines(att, m.ICS); err != nil {
			return err
		}
	}

	return mw.Close()
}

// writeBase64Lines wraps the encoding at 76 characters as required by RFC 2045.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}
