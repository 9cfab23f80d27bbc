package mail

import (
	"context"

	"go.uber.org/zap"

	"user-management-service/internal/usecase/user"
)

// LogMailer writes verification links to the log instead of sending them.
// It is meant for local development.
type LogMailer struct {
	log *zap.Logger
}

var _ user.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a new LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "log_mailer"))}
}

// SendVerification implements user.Mailer.
func (l *LogMailer) SendVerification(_ context.Context, msg user.VerificationEmail) error {
	l.log.Info("verification email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", verificationSubject),
		zap.String("link", msg.Link),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}
