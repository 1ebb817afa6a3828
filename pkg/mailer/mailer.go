package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/clinicdesk/clinicdesk/internal/config"
)

var ErrDisabled = errors.New("mail delivery is disabled")

// Mailer sends transactional mail (currently only password resets) over SMTP.
type Mailer struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func New(cfg config.MailConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
	}
}

// Enabled reports whether delivery is configured. Callers that must not
// proceed without a deliverable mail check this first.
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled
}

// SendPasswordReset emails a freshly generated password to the account owner.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, username, newPassword string) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your password has been reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour password has been reset. Your new password is:\n\n    %s\n\nPlease sign in and change it immediately.\n",
		username, newPassword,
	))

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
