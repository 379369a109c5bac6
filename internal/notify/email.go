package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/domainping/domainping/internal/config"
)

// EmailSender delivers reminders over SMTP with STARTTLS auth.
type EmailSender struct {
	cfg config.SMTPConfig
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Send(recipient, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("smtp configuration is incomplete")
	}
	if recipient == "" {
		return fmt.Errorf("no recipient email address")
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.FromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
