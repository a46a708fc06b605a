package services

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stridestreak/internal/config"
)

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	Name() string
}

// NewMailer returns an SMTP mailer when a server is configured and a log-only
// mailer otherwise.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Enabled() {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{logger: logger}
}

// SMTPMailer sends through an authenticated SMTP relay (STARTTLS when the
// server offers it).
type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Name() string { return "smtp" }

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Server, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// buildMessage folds the subject onto one line and RFC 2047 encodes it when it
// is not plain ASCII. Body line endings are normalized to CRLF.
func buildMessage(from, to, subject, body string, at time.Time) []byte {
	subject = strings.Join(strings.Fields(subject), " ")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer only logs the message. Used when no mail server is configured.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) Name() string { return "log" }

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("email not sent, no mail server configured",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
