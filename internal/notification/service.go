// Package notification turns notification requests into emails.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/mail"
)

// Mailer delivers a composed message
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Service composes subjects and bodies per notification kind
type Service struct {
	mailer  Mailer
	from    string
	subject string
	log     zerolog.Logger
}

// NewService creates a notification service
func NewService(mailer Mailer, from, subject string, log zerolog.Logger) *Service {
	return &Service{
		mailer:  mailer,
		from:    from,
		subject: subject,
		log:     log.With().Str("component", "notification").Logger(),
	}
}

// Send delivers req. With no usable recipients it logs and returns nil.
func (s *Service) Send(ctx context.Context, req domain.NotificationRequest) error {
	recipients := domain.NormalizeRecipients(req.Recipients)
	if len(recipients) == 0 {
		s.log.Warn().Str("kind", string(req.Kind)).Msg("No recipients for notification, skipping")
		return nil
	}

	subject, body, err := s.Compose(req)
	if err != nil {
		return err
	}

	err = s.mailer.Send(ctx, mail.Message{
		From:        s.from,
		To:          recipients,
		Subject:     subject,
		HTMLBody:    body,
		Attachments: req.Attachments,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", req.Kind, err)
	}

	s.log.Info().
		Str("kind", string(req.Kind)).
		Str("subject", subject).
		Int("recipients", len(recipients)).
		Msg("Notification sent")
	return nil
}

// Compose returns the subject and HTML body for req.
func (s *Service) Compose(req domain.NotificationRequest) (string, string, error) {
	var (
		subject string
		tmpl    *template.Template
		data    any
	)

	switch req.Kind {
	case domain.NotificationError:
		subject = "[ERROR] " + s.subject
		if req.Error != nil {
			tmpl, data = detailedErrorTmpl, withDefaults(*req.Error)
		} else {
			tmpl, data = simpleErrorTmpl, domain.ExceptionInfo{Message: "Error no especificado"}
		}
	case domain.NotificationSuccessNoDelinquency:
		subject = "[INFO] " + s.subject + " - Sin Morosidad"
		tmpl = noDelinquencyTmpl
	default:
		subject = s.subject
		tmpl = successTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", req.Kind, err)
	}
	return subject, buf.String(), nil
}

func withDefaults(info domain.ExceptionInfo) domain.ExceptionInfo {
	if info.System == "" {
		info.System = "No especificado"
	}
	if info.User == "" {
		info.User = "Sistema"
	}
	if info.Function == "" {
		info.Function = "No especificada"
	}
	return info
}
