package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("name", "is required"), http.StatusBadRequest},
		{"not found", NewNotFoundError("user", "user not found"), http.StatusNotFound},
		{"conflict", ErrAlreadyVerified, http.StatusConflict},
		{"invalid token", ErrInvalidToken, http.StatusBadRequest},
		{"invalid credentials", ErrInvalidCredentials, http.StatusBadRequest},
		{"unverified", ErrUnverifiedAccount, http.StatusBadRequest},
		{"notification", NewNotificationError(1, errors.New("smtp down")), http.StatusBadGateway},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s HTTPStatuser
			assert.True(t, errors.As(tt.err, &s))
			assert.Equal(t, tt.status, s.HTTPStatus())
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("verify: %w", ErrInvalidToken)

	assert.ErrorIs(t, wrapped, ErrInvalidToken)
	assert.NotErrorIs(t, wrapped, ErrInvalidCredentials)
}

func TestNotificationError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNotificationError(42, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "user 42")

	var ne *NotificationError
	assert.True(t, errors.As(fmt.Errorf("register: %w", err), &ne))
	assert.Equal(t, int64(42), ne.UserID)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "validation failed: email - is required", NewValidationError("email", "is required").Error())
	assert.Equal(t, "validation failed: bad input", NewValidationError("", "bad input").Error())
}
