package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/security"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, SQLite, a cache decorator) to be used interchangeably.
type Repository interface {
	// Create inserts a new user and returns the assigned id.
	Create(ctx context.Context, u *domain.User) (int64, error)
	// GetByID returns domain.ErrUserNotFound (wrapped) when no user has the id.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByVerificationToken returns nil, nil when no user holds the token.
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	// GetByCredentials matches email and password exactly and returns nil, nil when nothing matches.
	GetByCredentials(ctx context.Context, email, password string) (*domain.User, error)
	// Update overwrites an existing user; domain.ErrUserNotFound when the row is gone.
	Update(ctx context.Context, u *domain.User) (int64, error)
	// Delete removes a user; domain.ErrUserNotFound when no row was removed.
	Delete(ctx context.Context, id int64) (int64, error)
	// List returns every user.
	List(ctx context.Context) ([]domain.User, error)
}

// VerificationConfig controls how verification tokens are issued.
type VerificationConfig struct {
	BaseURL  string        // BaseURL is the verify endpoint the token is appended to
	TokenTTL time.Duration // TokenTTL is how long an issued token stays valid
}

// DefaultTokenTTL is used when VerificationConfig.TokenTTL is not positive.
const DefaultTokenTTL = time.Hour

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
// Reads and writes are single statements; concurrent updates of one user are last-write-wins.
type Usecase struct {
	repo     Repository              // Repository for data access
	mailer   Mailer                  // Mailer for verification emails
	log      *zap.Logger             // Logger for structured logging
	cfg      VerificationConfig      // Token issuing settings
	newToken security.TokenGenerator // Source of verification tokens
	now      func() time.Time        // Clock used for token expiry
}

// Option customises a Usecase.
type Option func(*Usecase)

// WithClock replaces the wall clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(uc *Usecase) {
		uc.now = now
	}
}

// WithTokenGenerator replaces the verification token source.
func WithTokenGenerator(gen security.TokenGenerator) Option {
	return func(uc *Usecase) {
		uc.newToken = gen
	}
}

// New creates a new instance of Usecase with the provided repository, mailer and logger.
func New(r Repository, m Mailer, cfg VerificationConfig, log *zap.Logger, opts ...Option) *Usecase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	uc := &Usecase{
		repo:     r,
		mailer:   m,
		log:      log,
		cfg:      cfg,
		newToken: security.NewVerificationToken,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// mapRepoError converts repository failures into application errors.
func mapRepoError(err error, id int64, action string) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}
	return pkgerrors.NewInternalError("failed to "+action, err)
}

// CreateUser stores a new user as given. The account starts unverified with no token.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	u := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	}

	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}
	u.ID = id

	return toDTO(u), nil
}

// UpdateUser overwrites name, email and password of an existing user.
// The id and the verification state are left untouched.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Warn("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "update user")
	}

	u.Name = in.Name
	u.Email = in.Email
	u.Password = in.Password

	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "update user")
	}

	return toDTO(u), nil
}

// DeleteUser removes a user.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	id, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		uc.log.Warn("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "delete user")
	}

	return &DeleteUserResponse{ID: id}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Warn("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, mapRepoError(err, in.ID, "get user")
	}

	return toDTO(u), nil
}

// ListUsers retrieves every user.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *toDTO(&domainUsers[i])
	}

	return &ListUsersResponse{
		Users: users,
	}, nil
}
