// Package mailer provides the email transport used for retention warnings.
package mailer

import (
	"context"

	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

// A Mailer sends rendered HTML emails.
type Mailer interface {
	// Send delivers an email. It returns an error on transport failure or
	// when the context expires before the delivery completes.
	Send(ctx context.Context, to, subject, html string) error
}

// SMTP is a Mailer delivering through an SMTP relay.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP returns a Mailer delivering through the given SMTP relay.
func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers an email.
func (m *SMTP) Send(ctx context.Context, to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	// gomail does not take a context so the dial-and-send runs aside and the
	// caller's deadline is enforced here.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return errors.Wrap(err, "could not send email")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "email send aborted")
	}
}
