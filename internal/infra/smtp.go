package infra

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"pixelfood/internal/config"

	"github.com/jordan-wright/email"
)

// implicitTLSPort is the SMTPS port; every other port uses STARTTLS when the
// server offers it.
const implicitTLSPort = 465

// Mailer sends receipts with the PDF attached. A Mailer without SMTP_HOST is
// valid but not Configured.
type Mailer struct {
	host    string
	port    int
	auth    smtp.Auth
	from    string
	timeout time.Duration
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if cfg.BusinessName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.BusinessName, from)
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Mailer{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		auth:    auth,
		from:    from,
		timeout: 30 * time.Second,
	}
}

func (m *Mailer) Configured() bool { return m.host != "" }

// SendRecibo mails body to one address with pdfPath attached (if not empty).
func (m *Mailer) SendRecibo(to, subject, body, pdfPath string) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if m.port == implicitTLSPort {
		if err := e.SendWithTLS(addr, m.auth, &tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("mailer: send to %s: %w", to, err)
		}
		return nil
	}
	if err := e.Send(addr, m.auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
