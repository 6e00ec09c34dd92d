package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	sc "github.com/mbayed/filevault/internal/server/config"
)

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

// SMTPMailer sends plain-text mail over SMTP with optional PLAIN auth.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *sc.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return sendMail(addr, auth, m.from, []string{to}, msg)
}

func buildMessage(from, to, subject, body string) ([]byte, error) {
	for field, v := range map[string]string{"from": from, "to": to, "subject": subject} {
		if err := rejectCRLF(v, field); err != nil {
			return nil, err
		}
	}

	header := fmt.Sprintf("Date: %s\r\nFrom: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		time.Now().Format(time.RFC1123Z), from, to, subject)
	return []byte(header + body), nil
}

// rejectCRLF guards against header injection through user-controlled values.
func rejectCRLF(value string, field string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("invalid %s header: CRLF not allowed", field)
	}
	return nil
}
