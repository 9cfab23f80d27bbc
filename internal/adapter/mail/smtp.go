// Package mail delivers verification emails.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"user-management-service/internal/usecase/user"
)

// SMTPConfig holds the settings of the outgoing mail server.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string // mandatory, opportunistic or none
	Timeout   time.Duration
}

// SMTPMailer sends verification emails over SMTP. Every send opens its own
// connection and closes it before returning.
type SMTPMailer struct {
	cfg SMTPConfig
	log *zap.Logger
}

var _ user.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		log: log.With(zap.String("component", "smtp_mailer")),
	}
}

// ParseTLSPolicy maps a config value onto a go-mail TLS policy.
func ParseTLSPolicy(s string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.TLSMandatory, fmt.Errorf("unknown smtp tls policy %q", s)
	}
}

// SendVerification implements user.Mailer.
func (s *SMTPMailer) SendVerification(ctx context.Context, msg user.VerificationEmail) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	c, err := s.newClient()
	if err != nil {
		return err
	}

	s.log.Info("attempting smtp send", zap.String("host", s.cfg.Host), zap.Int("port", s.cfg.Port), zap.String("to", msg.To))

	if err := c.DialWithContext(ctx); err != nil {
		s.log.Error("smtp dial failed", zap.String("host", s.cfg.Host), zap.Error(err))
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			s.log.Warn("failed to close smtp connection", zap.Error(err))
		}
	}()

	if err := c.Send(m); err != nil {
		s.log.Error("smtp send failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("smtp send failed: %w", err)
	}

	s.log.Info("smtp send ok", zap.String("to", msg.To))
	return nil
}

func (s *SMTPMailer) buildMessage(msg user.VerificationEmail) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(verificationSubject)
	m.SetBodyString(gomail.TypeTextPlain, verificationBody(msg))

	return m, nil
}

func (s *SMTPMailer) newClient() (*gomail.Client, error) {
	policy, err := ParseTLSPolicy(s.cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	c, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client init failed: %w", err)
	}
	return c, nil
}
