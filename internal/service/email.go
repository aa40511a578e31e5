package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/talenthub/competency-api/internal/config"
	"github.com/talenthub/competency-api/internal/queue"
	"github.com/talenthub/competency-api/pkg/logger"
)

// verificationLink builds the clickable URL carried in the email body.
func verificationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/api/v1/auth/verify?token=" + token
}

// ConsoleMailer logs verification links instead of delivering them. It is
// the dev-environment default and the fallback when SMTP is not configured.
type ConsoleMailer struct {
	BaseURL string
}

func (m ConsoleMailer) SendVerification(_ context.Context, to, name, token string) error {
	log := logger.Get()
	log.Info().
		Str("to", to).
		Str("name", name).
		Str("link", verificationLink(m.BaseURL, token)).
		Msg("verification email (console delivery)")
	return nil
}

// SMTPMailer delivers verification emails over SMTP with PLAIN auth.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerification(_ context.Context, to, name, token string) error {
	link := verificationLink(m.cfg.BaseURL, token)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.SenderName, m.cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Verify your email address\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", name)
	fmt.Fprintf(&b, "Please confirm your email address by opening the link below:\r\n\r\n%s\r\n\r\n", link)
	b.WriteString("The link expires in 24 hours. If you did not request this, ignore this message.\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// QueueMailer hands verification emails to the message broker so delivery
// happens out of the request path. On publish failure it falls back to the
// direct mailer, keeping the flow working when the broker is down.
type QueueMailer struct {
	pub      *queue.Publisher
	fallback Mailer
	now      Clock
}

func NewQueueMailer(pub *queue.Publisher, fallback Mailer, now Clock) *QueueMailer {
	if now == nil {
		now = UTCNow
	}
	return &QueueMailer{pub: pub, fallback: fallback, now: now}
}

func (m *QueueMailer) SendVerification(ctx context.Context, to, name, token string) error {
	ev := queue.VerificationEmailEvent{
		Email:       to,
		FullName:    name,
		Token:       token,
		RequestedAt: m.now().Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := m.pub.PublishVerificationEmail(ctx, ev); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("queued email publish failed, sending directly")
		return m.fallback.SendVerification(ctx, to, name, token)
	}
	return nil
}

// NewMailer picks the delivery strategy from configuration: queued when a
// broker URL is set, direct SMTP when enabled, console otherwise.
func NewMailer(cfg config.Config, now Clock) Mailer {
	var direct Mailer = ConsoleMailer{BaseURL: cfg.SMTP.BaseURL}
	if cfg.SMTP.Enabled {
		direct = NewSMTPMailer(cfg.SMTP)
	}
	if pub := queue.NewPublisher(cfg.AMQPURL); pub != nil {
		return NewQueueMailer(pub, direct, now)
	}
	return direct
}
