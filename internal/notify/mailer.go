package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/config"
)

// Mailer sends plain-text email over SMTP. When no SMTP host is configured
// it degrades to a logging stub so local and test environments never need
// real credentials.
type Mailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewMailer creates a mailer from config.
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Configured reports whether a real SMTP host is set.
func (m *Mailer) Configured() bool {
	return m.cfg.SMTPHost != ""
}

// Send delivers one message. recipient is a bare address.
func (m *Mailer) Send(recipient, subject, body string) error {
	if !m.Configured() {
		m.logger.Info("email stub (no SMTP configured)",
			zap.String("to", recipient),
			zap.String("subject", subject))
		return nil
	}

	from := m.cfg.FromAddress
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
