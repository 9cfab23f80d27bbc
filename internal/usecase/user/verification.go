package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/security"
)

// VerificationEmail is the content of one verification message.
type VerificationEmail struct {
	To        string
	Name      string
	Link      string
	ExpiresAt time.Time
}

// Mailer delivers verification emails.
type Mailer interface {
	SendVerification(ctx context.Context, msg VerificationEmail) error
}

// Register creates an unverified account with an outstanding token and emails the link.
//
// The account is committed before the email is attempted. When sending fails the
// response is still returned together with a *pkgerrors.NotificationError, so the
// caller knows the account exists and can ask for the email again.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	uc.log.Info("registering user", zap.String("name", in.Name), zap.String("email", in.Email))

	token, err := uc.newToken()
	if err != nil {
		uc.log.Error("failed to generate verification token", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	expiry := uc.now().Add(uc.cfg.TokenTTL)

	u := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	}
	u.IssueVerification(token, expiry)

	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to persist registered user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	u.ID = id

	resp := &RegisterResponse{ID: id, Token: token, ExpiresAt: expiry}

	if err := uc.sendVerification(ctx, u); err != nil {
		return resp, err
	}

	uc.log.Info("user registered", zap.Int64("id", id), zap.Time("token_expiry", expiry))
	return resp, nil
}

// VerifyEmail redeems a verification token.
// Unknown, consumed and expired tokens all fail with pkgerrors.ErrInvalidToken.
func (uc *Usecase) VerifyEmail(ctx context.Context, in VerifyEmailRequest) error {
	if in.Token == "" {
		uc.log.Warn("verification attempted without token")
		return pkgerrors.ErrInvalidToken
	}

	u, err := uc.repo.GetByVerificationToken(ctx, in.Token)
	if err != nil {
		uc.log.Error("failed to look up verification token", zap.Error(err))
		return pkgerrors.NewInternalError("failed to verify email", err)
	}
	if u == nil {
		uc.log.Warn("verification token not found")
		return pkgerrors.ErrInvalidToken
	}

	now := uc.now()
	if u.TokenExpired(now) {
		uc.log.Warn("verification token expired", zap.Int64("id", u.ID), zap.Timep("token_expiry", u.VerificationTokenExpiry))
		return pkgerrors.ErrInvalidToken
	}

	u.MarkVerified()
	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Warn("failed to persist verification", zap.Int64("id", u.ID), zap.Error(err))
		if errors.Is(err, domain.ErrUserNotFound) {
			// Deleted between lookup and update: the token no longer belongs to anyone.
			return pkgerrors.ErrInvalidToken
		}
		return pkgerrors.NewInternalError("failed to verify email", err)
	}

	uc.log.Info("email verified", zap.Int64("id", u.ID))
	return nil
}

// Login checks credentials against stored plain values. It produces no session:
// a nil error is the whole result.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) error {
	u, err := uc.repo.GetByCredentials(ctx, in.Email, in.Password)
	if err != nil {
		uc.log.Error("failed to look up credentials", zap.String("email", in.Email), zap.Error(err))
		return pkgerrors.NewInternalError("failed to log in", err)
	}
	if u == nil {
		uc.log.Warn("login rejected: invalid credentials", zap.String("email", in.Email))
		return pkgerrors.ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		uc.log.Warn("login rejected: email not verified", zap.Int64("id", u.ID))
		return pkgerrors.ErrUnverifiedAccount
	}

	uc.log.Info("login succeeded", zap.Int64("id", u.ID))
	return nil
}

// ResendVerification replaces the outstanding token of an unverified user and emails it.
// Verified users are rejected with pkgerrors.ErrAlreadyVerified.
func (uc *Usecase) ResendVerification(ctx context.Context, in ResendVerificationRequest) (*ResendVerificationResponse, error) {
	uc.log.Info("resending verification", zap.Int64("id", in.ID))

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Warn("failed to load user for resend", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "resend verification")
	}
	if u.IsEmailVerified {
		uc.log.Warn("resend rejected: already verified", zap.Int64("id", in.ID))
		return nil, pkgerrors.ErrAlreadyVerified
	}

	token, err := uc.newToken()
	if err != nil {
		uc.log.Error("failed to generate verification token", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to resend verification", err)
	}
	expiry := uc.now().Add(uc.cfg.TokenTTL)
	u.IssueVerification(token, expiry)

	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to persist new verification token", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "resend verification")
	}

	resp := &ResendVerificationResponse{ID: u.ID, ExpiresAt: expiry}
	if err := uc.sendVerification(ctx, u); err != nil {
		return resp, err
	}

	return resp, nil
}

// sendVerification emails the outstanding token of u.
func (uc *Usecase) sendVerification(ctx context.Context, u *domain.User) error {
	link, err := security.VerificationLink(uc.cfg.BaseURL, *u.VerificationToken)
	if err != nil {
		uc.log.Error("failed to build verification link", zap.Int64("id", u.ID), zap.Error(err))
		return pkgerrors.NewNotificationError(u.ID, err)
	}

	err = uc.mailer.SendVerification(ctx, VerificationEmail{
		To:        u.Email,
		Name:      u.Name,
		Link:      link,
		ExpiresAt: *u.VerificationTokenExpiry,
	})
	if err != nil {
		uc.log.Error("failed to send verification email", zap.Int64("id", u.ID), zap.String("email", u.Email), zap.Error(err))
		return pkgerrors.NewNotificationError(u.ID, err)
	}

	uc.log.Debug("verification email sent", zap.Int64("id", u.ID))
	return nil
}
