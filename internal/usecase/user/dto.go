package user

import (
	"time"

	domain "user-management-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
// No content rules apply: empty strings are stored as given.
type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Name, Email and Password overwrite the stored values unconditionally.
type UpdateUserRequest struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// RegisterRequest represents the request payload for self-registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResponse describes the account created by Register and its outstanding token.
type RegisterResponse struct {
	ID        int64
	Token     string
	ExpiresAt time.Time
}

// VerifyEmailRequest carries the token taken from a verification link.
type VerifyEmailRequest struct {
	Token string
}

// LoginRequest carries plain credentials.
type LoginRequest struct {
	Email    string
	Password string
}

// ResendVerificationRequest identifies the account that should receive a fresh token.
type ResendVerificationRequest struct {
	ID int64
}

// ResendVerificationResponse describes the freshly issued token.
type ResendVerificationResponse struct {
	ID        int64
	ExpiresAt time.Time
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID                      int64
	Name                    string
	Email                   string
	Password                string
	IsEmailVerified         bool
	VerificationTokenExpiry *time.Time
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		Password:                u.Password,
		IsEmailVerified:         u.IsEmailVerified,
		VerificationTokenExpiry: u.VerificationTokenExpiry,
	}
}
