package mail

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/nexora-hq/nexora/internal/config"
)

// Message is one outbound HTML email. SenderName and ReplyTo let automation
// emails appear to come from the member who scheduled them.
type Message struct {
	To         string
	Subject    string
	HTML       string
	SenderName string
	ReplyTo    string
}

// Sender delivers outbound email
type Sender interface {
	Send(msg Message) error
}

// SMTPMailer sends email over SMTP
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a single message. Missing SMTP configuration logs and skips
// rather than failing the calling job.
func (m *SMTPMailer) Send(msg Message) error {
	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.FromEmail == "" {
		log.Warn().Str("to", msg.To).Msg("smtp config missing, skipping email")
		return nil
	}

	gm := gomail.NewMessage()
	from := m.cfg.FromEmail
	if msg.SenderName != "" {
		from = gm.FormatAddress(m.cfg.FromEmail, fmt.Sprintf("%s via Nexora", msg.SenderName))
	}
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetBody("text/html", msg.HTML)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(gm); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}
