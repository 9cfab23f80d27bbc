package user

import "context"

// UserUsecase defines the interface for user business logic operations.
type UserUsecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	ListUsers(ctx context.Context) (*ListUsersResponse, error)

	Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, in VerifyEmailRequest) error
	Login(ctx context.Context, in LoginRequest) error
	ResendVerification(ctx context.Context, in ResendVerificationRequest) (*ResendVerificationResponse, error)
}

var _ UserUsecase = (*Usecase)(nil)
