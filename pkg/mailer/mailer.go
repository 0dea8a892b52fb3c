// Package mailer delivers outbound mail with optional attachments over SMTP.
package mailer

import (
	"encoding/base64"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// Attachment is one file attached to an outbound message. Content is carried
// base64-encoded, matching how confirmation documents are stored.
type Attachment struct {
	Filename      string
	MIMEType      string
	ContentBase64 string
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer sends messages. Delivery failures are surfaced to the caller and are
// not retried here.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer is the gomail-backed Mailer.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a Mailer that delivers through the given SMTP server.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send builds and delivers the message in one SMTP session.
func (m *SMTPMailer) Send(msg Message) error {
	gm, err := BuildMessage(m.from, msg)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// BuildMessage translates a Message into a gomail message. Split out from Send
// so the construction can be exercised without an SMTP server.
func BuildMessage(from string, msg Message) (*gomail.Message, error) {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	for _, att := range msg.Attachments {
		content, err := base64.StdEncoding.DecodeString(att.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("decoding attachment %s: %w", att.Filename, err)
		}
		gm.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, werr := w.Write(content)
				return werr
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.MIMEType}}),
		)
	}
	return gm, nil
}
