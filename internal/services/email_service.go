package services

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"logingate/internal/logging"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewMailDialer(smtpHost string, smtpPort int, smtpUser, smtpPassword string) *gomail.Dialer {
	return gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
}

// EmailMessenger delivers direct messages to the user's email address.
type EmailMessenger struct {
	dialer  MailSender
	from    string
	subject string
	users   UserLookup
	logger  logging.Logger
}

func NewEmailMessenger(dialer MailSender, fromEmail, subject string, users UserLookup, logger logging.Logger) *EmailMessenger {
	return &EmailMessenger{dialer: dialer, from: fromEmail, subject: subject, users: users, logger: logger}
}

func (s *EmailMessenger) SendMessage(ctx context.Context, from, targetUserID, text string) error {
	user, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("email lookup user %s: %w", targetUserID, err)
	}
	if user.Email == "" {
		s.logger.Info(ctx, "[email][skip] user has no email", "user_id", targetUserID)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", s.subject)
	m.SetBody("text/plain", text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Info(ctx, "[email][send] ok", "user_id", targetUserID)
	return nil
}
