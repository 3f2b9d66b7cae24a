package auth

import (
	"context"

	"go.uber.org/zap"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// DevLogMailer writes reset links to the log instead of sending mail.
type DevLogMailer struct {
	enabled bool
	log     *zap.Logger
}

func NewDevLogMailer(enabled bool, log *zap.Logger) *DevLogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DevLogMailer{enabled: enabled, log: log}
}

func (m *DevLogMailer) SendPasswordReset(_ context.Context, email, link string) error {
	if m.enabled {
		m.log.Info("[DEV-EMAIL] password reset", zap.String("email", email), zap.String("link", link))
	}
	return nil
}
