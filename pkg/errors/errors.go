package errors

import (
	"fmt"
	"net/http"
)

// Common application errors
var (
	ErrNotFound           = NewNotFoundError("resource", "resource not found")
	ErrInvalidArgument    = NewValidationError("", "invalid argument")
	ErrInternal           = NewInternalError("internal server error", nil)
	ErrInvalidToken       = &InvalidTokenError{Message: "Invalid or expired token."}
	ErrInvalidCredentials = &InvalidCredentialsError{Message: "Invalid email or password."}
	ErrUnverifiedAccount  = &UnverifiedAccountError{Message: "Please verify your email before logging in."}
	ErrAlreadyVerified    = NewConflictError("user", "Email is already verified.")
)

// HTTPStatuser is implemented by errors that know their HTTP status code
type HTTPStatuser interface {
	HTTPStatus() int
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// ConflictError represents a request that contradicts the current resource state
type ConflictError struct {
	Resource string
	Message  string
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s conflicts with current state", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

// InvalidTokenError is returned when a verification token is unknown or expired.
// Both cases share one error so callers cannot probe which tokens ever existed.
type InvalidTokenError struct {
	Message string
}

// Error implements the error interface
func (e *InvalidTokenError) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status for this error
func (e *InvalidTokenError) HTTPStatus() int {
	return http.StatusBadRequest
}

// InvalidCredentialsError is returned when no user matches an email and password pair
type InvalidCredentialsError struct {
	Message string
}

// Error implements the error interface
func (e *InvalidCredentialsError) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status for this error
func (e *InvalidCredentialsError) HTTPStatus() int {
	return http.StatusBadRequest
}

// UnverifiedAccountError is returned when credentials match an account whose email is not verified
type UnverifiedAccountError struct {
	Message string
}

// Error implements the error interface
func (e *UnverifiedAccountError) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status for this error
func (e *UnverifiedAccountError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotificationError reports that a user row was committed but the email to it could not be sent.
type NotificationError struct {
	UserID int64
	Err    error
}

// NewNotificationError creates a new notification error
func NewNotificationError(userID int64, err error) *NotificationError {
	return &NotificationError{
		UserID: userID,
		Err:    err,
	}
}

// Error implements the error interface
func (e *NotificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notification for user %d failed: %v", e.UserID, e.Err)
	}
	return fmt.Sprintf("notification for user %d failed", e.UserID)
}

// Unwrap returns the wrapped error
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *NotificationError) HTTPStatus() int {
	return http.StatusBadGateway
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}
