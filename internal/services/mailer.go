package services

import (
	"fmt"

	"nestworth-api/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. The only message in scope is the
// password-reset notification.
type Mailer interface {
	SendPasswordReset(to, token string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your NestWorth password reset token (valid for 10 minutes)")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Forgot your password? Submit a PATCH request to /api/v1/auth/reset-password/%s with your new password.\n\n"+
			"If you didn't request a reset, you can ignore this email.", token))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
