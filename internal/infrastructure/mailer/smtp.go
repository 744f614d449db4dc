// Package mailer sends confirmation emails over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/retry"
)

// SMTPMailer delivers plain text mail through an SMTP relay, upgrading to STARTTLS when offered.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

var _ confirmation.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer from SMTP_* settings.
func NewSMTPMailer(cfg *config.Config, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPServer,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.FromEmail,
		timeout:  30 * time.Second,
		log:      log.With().Str("component", "smtp-mailer").Logger(),
		now:      time.Now,
	}
}

// Send delivers msg. Bad addresses and rejections with a 5xx reply are marked
// permanent so they are not retried.
func (m *SMTPMailer) Send(ctx context.Context, msg confirmation.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return retry.Permanent(errors.New("message has no recipient"))
	}

	out, err := m.compose(msg)
	if err != nil {
		return retry.Permanent(err)
	}

	client, err := mail.NewClient(m.host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return classify("send mail", err)
	}

	m.log.Info().Str("subject", msg.Subject).Msg("confirmation email sent")
	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(m.timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTLSConfig(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}

func (m *SMTPMailer) compose(msg confirmation.Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("sender address %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}

	domain := m.host
	if at := strings.LastIndex(m.from, "@"); at >= 0 {
		domain = m.from[at+1:]
	}
	out.Subject(msg.Subject)
	out.SetDateWithValue(m.now())
	out.SetMessageIDWithValue(uuid.NewString() + "@" + domain)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

func classify(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.ErrorCode() >= 500 {
		return retry.Permanent(wrapped)
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 {
		return retry.Permanent(wrapped)
	}
	return wrapped
}
