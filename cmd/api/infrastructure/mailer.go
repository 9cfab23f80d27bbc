package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"user-management-service/internal/adapter/mail"
	"user-management-service/internal/config"
	"user-management-service/internal/usecase/user"
)

// NewMailer builds the mailer selected by MAIL_DRIVER.
func NewMailer(cfg *config.Config, l *zap.Logger) (user.Mailer, error) {
	switch cfg.SMTP.Driver {
	case "smtp":
		if _, err := mail.ParseTLSPolicy(cfg.SMTP.TLSPolicy); err != nil {
			return nil, err
		}
		l.Info("using smtp mailer", zap.String("host", cfg.SMTP.Host), zap.Int("port", cfg.SMTP.Port))
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			From:      cfg.SMTP.From,
			TLSPolicy: cfg.SMTP.TLSPolicy,
			Timeout:   cfg.SMTP.Timeout,
		}, l), nil
	case "log":
		l.Warn("using log mailer: verification emails are not delivered")
		return mail.NewLogMailer(l), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.SMTP.Driver)
	}
}
