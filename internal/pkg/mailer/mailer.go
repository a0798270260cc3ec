package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
)

// Mailer delivers outbound account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendRecoveryCode(ctx context.Context, email, code string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *SMTPMailer) SendWelcome(_ context.Context, email, name string) error {
	subject := "Welcome to our platform"
	body := fmt.Sprintf("Hello %s,\r\n\r\nThanks for registering. We are glad to have you with us!\r\n", name)
	return m.send(email, subject, body)
}

func (m *SMTPMailer) SendRecoveryCode(_ context.Context, email, code string) error {
	subject := "Password recovery"
	body := fmt.Sprintf("We received a request to reset your password.\r\n\r\n"+
		"Your recovery code is: %s\r\n\r\nThis code expires in 15 minutes. "+
		"If you did not request this, ignore this email.\r\n", code)
	return m.send(email, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body))
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// ConsoleMailer logs instead of sending, used when SMTP is not configured.
type ConsoleMailer struct {
	log *logrus.Logger
}

func NewConsoleMailer(log *logrus.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) SendWelcome(_ context.Context, email, name string) error {
	m.log.WithFields(logrus.Fields{"email": email, "name": name}).Info("simulated welcome email")
	return nil
}

func (m *ConsoleMailer) SendRecoveryCode(_ context.Context, email, code string) error {
	m.log.WithFields(logrus.Fields{"email": email, "code": code}).Info("simulated recovery email")
	return nil
}
