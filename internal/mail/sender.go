// Package mail delivers HTML messages with attachments over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/retry"
)

// ErrNotConfigured is returned when no SMTP host is set
var ErrNotConfigured = errors.New("smtp host not configured")

// Message is a single outgoing email
type Message struct {
	From        string
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []domain.Attachment
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// Config holds the SMTP connection settings
type Config struct {
	Host               string
	Port               int
	Username           string
	Password           string
	InsecureSkipVerify bool
}

// Sender sends messages through a dialer with the transport retry policy
type Sender struct {
	dialer Dialer
	policy retry.Policy
	log    zerolog.Logger
}

// NewDialer builds a STARTTLS-capable gomail dialer.
func NewDialer(cfg Config) *gomail.Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == 465
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // relay with self-signed certs
	}
	return d
}

// NewSender creates a sender. A nil dialer makes every Send fail with
// ErrNotConfigured.
func NewSender(dialer Dialer, policy retry.Policy, log zerolog.Logger) *Sender {
	return &Sender{
		dialer: dialer,
		policy: policy.Named("SendMail"),
		log:    log.With().Str("component", "mail").Logger(),
	}
}

// Send delivers msg, retrying transient transport failures.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}

	m := Compose(msg)
	err := s.policy.Run(ctx, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.deliver(msg.From, msg.To, m)
	})
	if err != nil {
		return fmt.Errorf("failed to send %q: %w", msg.Subject, err)
	}

	s.log.Info().
		Str("subject", msg.Subject).
		Int("recipients", len(msg.To)).
		Int("attachments", len(msg.Attachments)).
		Msg("Email sent")
	return nil
}

// deliver runs one SMTP session. Errors from MAIL, RCPT and DATA are
// returned unwrapped so the transport classifier can see them.
func (s *Sender) deliver(from string, to []string, m *gomail.Message) error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	if err := sc.Send(from, to, m); err != nil {
		_ = sc.Close()
		return err
	}
	if err := sc.Close(); err != nil {
		s.log.Warn().Err(err).Msg("SMTP session did not close cleanly after delivery")
	}
	return nil
}

// Compose builds the MIME message.
func Compose(msg Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	for _, a := range msg.Attachments {
		content := a.Content
		m.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}
