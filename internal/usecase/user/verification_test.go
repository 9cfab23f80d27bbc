package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-management-service/internal/domain/user"
	pkgerrors "user-management-service/pkg/errors"
)

// ==================== REGISTER TESTS ====================

func TestRegister_Success(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	req := RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "p1"}
	wantExpiry := fixedNow.Add(time.Hour)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Alice" && u.Email == "a@x.com" && u.Password == "p1" &&
			!u.IsEmailVerified &&
			u.HasPendingVerification() &&
			*u.VerificationToken == "tok-1" &&
			u.VerificationTokenExpiry.Equal(wantExpiry)
	})).Return(int64(7), nil)
	mockMailer.On("SendVerification", ctx, VerificationEmail{
		To:        "a@x.com",
		Name:      "Alice",
		Link:      testBaseURL + "?token=tok-1",
		ExpiresAt: wantExpiry,
	}).Return(nil)

	resp, err := uc.Register(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "tok-1", resp.Token)
	assert.True(t, wantExpiry.Equal(resp.ExpiresAt))

	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestRegister_UsesConfiguredTTL(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMailer := new(MockMailer)
	uc := New(mockRepo, mockMailer, VerificationConfig{BaseURL: testBaseURL, TokenTTL: 10 * time.Minute}, zaptest.NewLogger(t),
		WithClock(func() time.Time { return fixedNow }),
		WithTokenGenerator(func() (string, error) { return "tok-ttl", nil }),
	)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	mockMailer.On("SendVerification", ctx, mock.Anything).Return(nil)

	resp, err := uc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})

	require.NoError(t, err)
	assert.True(t, fixedNow.Add(10*time.Minute).Equal(resp.ExpiresAt))
}

func TestRegister_TokenGenerationFails(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMailer := new(MockMailer)
	uc := New(mockRepo, mockMailer, VerificationConfig{BaseURL: testBaseURL}, zaptest.NewLogger(t),
		WithTokenGenerator(func() (string, error) { return "", errors.New("entropy exhausted") }),
	)

	resp, err := uc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})

	assert.Nil(t, resp)
	var internal *pkgerrors.InternalError
	assert.ErrorAs(t, err, &internal)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockMailer.AssertNotCalled(t, "SendVerification", mock.Anything, mock.Anything)
}

func TestRegister_RepositoryError(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(0), errors.New("database error"))

	resp, err := uc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})

	assert.Nil(t, resp)
	var internal *pkgerrors.InternalError
	assert.ErrorAs(t, err, &internal)
	mockMailer.AssertNotCalled(t, "SendVerification", mock.Anything, mock.Anything)
}

func TestRegister_MailFailureKeepsAccount(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	smtpErr := errors.New("smtp unreachable")
	mockRepo.On("Create", ctx, mock.Anything).Return(int64(9), nil)
	mockMailer.On("SendVerification", ctx, mock.Anything).Return(smtpErr)

	resp, err := uc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})

	require.NotNil(t, resp, "the committed account must still be reported")
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "tok-1", resp.Token)

	var notification *pkgerrors.NotificationError
	require.ErrorAs(t, err, &notification)
	assert.Equal(t, int64(9), notification.UserID)
	assert.ErrorIs(t, err, smtpErr)

	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRegister_InvalidBaseURL(t *testing.T) {
	mockRepo := new(MockRepository)
	mockMailer := new(MockMailer)
	uc := New(mockRepo, mockMailer, VerificationConfig{BaseURL: "http://[::1"}, zaptest.NewLogger(t),
		WithTokenGenerator(func() (string, error) { return "tok", nil }),
	)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(int64(2), nil)

	resp, err := uc.Register(ctx, RegisterRequest{Name: "A", Email: "a@x.com", Password: "p"})

	require.NotNil(t, resp)
	var notification *pkgerrors.NotificationError
	assert.ErrorAs(t, err, &notification)
	mockMailer.AssertNotCalled(t, "SendVerification", mock.Anything, mock.Anything)
}

// ==================== VERIFY EMAIL TESTS ====================

func pendingUser(id int64, token string, expiry time.Time) *domain.User {
	u := &domain.User{ID: id, Name: "Alice", Email: "a@x.com", Password: "p1"}
	u.IssueVerification(token, expiry)
	return u
}

func TestVerifyEmail_Success(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByVerificationToken", ctx, "tok-1").Return(pendingUser(7, "tok-1", fixedNow.Add(time.Minute)), nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 7 && u.IsEmailVerified && u.VerificationToken == nil && u.VerificationTokenExpiry == nil
	})).Return(int64(7), nil)

	err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: "tok-1"})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		stored *domain.User
	}{
		{
			name:   "unknown token",
			token:  "nope",
			stored: nil,
		},
		{
			name:   "expired token",
			token:  "old",
			stored: pendingUser(1, "old", fixedNow.Add(-time.Second)),
		},
		{
			name:   "expiry equal to now",
			token:  "edge",
			stored: pendingUser(1, "edge", fixedNow),
		},
		{
			name:   "token without expiry",
			token:  "half",
			stored: &domain.User{ID: 1, VerificationToken: func() *string { s := "half"; return &s }()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo, _ := setupTestUsecase(t)
			ctx := context.Background()

			if tt.stored == nil {
				mockRepo.On("GetByVerificationToken", ctx, tt.token).Return(nil, nil)
			} else {
				mockRepo.On("GetByVerificationToken", ctx, tt.token).Return(tt.stored, nil)
			}

			err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: tt.token})

			assert.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
			assert.Equal(t, "Invalid or expired token.", err.Error())
			mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyEmail_EmptyTokenSkipsLookup(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)

	err := uc.VerifyEmail(context.Background(), VerifyEmailRequest{Token: ""})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
	mockRepo.AssertNotCalled(t, "GetByVerificationToken", mock.Anything, mock.Anything)
}

func TestVerifyEmail_ExpiredTokenIsNotCleared(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	stale := pendingUser(1, "old", fixedNow.Add(-time.Hour))
	mockRepo.On("GetByVerificationToken", ctx, "old").Return(stale, nil)

	err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: "old"})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
	assert.False(t, stale.IsEmailVerified)
	assert.True(t, stale.HasPendingVerification())
}

func TestVerifyEmail_UserDeletedBeforeUpdate(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByVerificationToken", ctx, "tok").Return(pendingUser(1, "tok", fixedNow.Add(time.Hour)), nil)
	mockRepo.On("Update", ctx, mock.Anything).Return(int64(0), domain.ErrUserNotFound)

	err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: "tok"})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
}

func TestVerifyEmail_RepositoryErrors(t *testing.T) {
	t.Run("lookup fails", func(t *testing.T) {
		uc, mockRepo, _ := setupTestUsecase(t)
		ctx := context.Background()

		mockRepo.On("GetByVerificationToken", ctx, "tok").Return(nil, errors.New("database error"))

		err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: "tok"})

		var internal *pkgerrors.InternalError
		assert.ErrorAs(t, err, &internal)
	})

	t.Run("update fails", func(t *testing.T) {
		uc, mockRepo, _ := setupTestUsecase(t)
		ctx := context.Background()

		mockRepo.On("GetByVerificationToken", ctx, "tok").Return(pendingUser(1, "tok", fixedNow.Add(time.Hour)), nil)
		mockRepo.On("Update", ctx, mock.Anything).Return(int64(0), errors.New("database error"))

		err := uc.VerifyEmail(ctx, VerifyEmailRequest{Token: "tok"})

		var internal *pkgerrors.InternalError
		assert.ErrorAs(t, err, &internal)
	})
}

// ==================== LOGIN TESTS ====================

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		stored  *domain.User
		repoErr error
		wantErr error
	}{
		{
			name:    "verified account",
			stored:  &domain.User{ID: 1, Email: "a@x.com", Password: "p1", IsEmailVerified: true},
			wantErr: nil,
		},
		{
			name:    "unverified account",
			stored:  pendingUser(1, "tok", fixedNow.Add(time.Hour)),
			wantErr: pkgerrors.ErrUnverifiedAccount,
		},
		{
			name:    "no matching account",
			stored:  nil,
			wantErr: pkgerrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo, _ := setupTestUsecase(t)
			ctx := context.Background()

			if tt.stored == nil {
				mockRepo.On("GetByCredentials", ctx, "a@x.com", "p1").Return(nil, nil)
			} else {
				mockRepo.On("GetByCredentials", ctx, "a@x.com", "p1").Return(tt.stored, nil)
			}

			err := uc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "p1"})

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByCredentials", ctx, "a@x.com", "p1").Return(nil, errors.New("database error"))

	err := uc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "p1"})

	var internal *pkgerrors.InternalError
	assert.ErrorAs(t, err, &internal)
}

func TestLogin_DoesNotModifyUser(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByCredentials", ctx, "a@x.com", "p1").
		Return(&domain.User{ID: 1, Email: "a@x.com", Password: "p1", IsEmailVerified: true}, nil)

	require.NoError(t, uc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "p1"}))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==================== RESEND VERIFICATION TESTS ====================

func TestResendVerification_Success(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	wantExpiry := fixedNow.Add(time.Hour)
	mockRepo.On("GetByID", ctx, int64(4)).Return(pendingUser(4, "old", fixedNow.Add(-time.Hour)), nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 4 && *u.VerificationToken == "tok-1" && u.VerificationTokenExpiry.Equal(wantExpiry)
	})).Return(int64(4), nil)
	mockMailer.On("SendVerification", ctx, mock.MatchedBy(func(msg VerificationEmail) bool {
		return msg.To == "a@x.com" && msg.Link == testBaseURL+"?token=tok-1"
	})).Return(nil)

	resp, err := uc.ResendVerification(ctx, ResendVerificationRequest{ID: 4})

	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.ID)
	assert.True(t, wantExpiry.Equal(resp.ExpiresAt))
	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(4)).Return(&domain.User{ID: 4, IsEmailVerified: true}, nil)

	resp, err := uc.ResendVerification(ctx, ResendVerificationRequest{ID: 4})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyVerified)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockMailer.AssertNotCalled(t, "SendVerification", mock.Anything, mock.Anything)
}

func TestResendVerification_NotFound(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(404)).Return(nil, domain.ErrUserNotFound)

	_, err := uc.ResendVerification(ctx, ResendVerificationRequest{ID: 404})

	var notFound *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResendVerification_MailFailure(t *testing.T) {
	uc, mockRepo, mockMailer := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(4)).Return(pendingUser(4, "old", fixedNow), nil)
	mockRepo.On("Update", ctx, mock.Anything).Return(int64(4), nil)
	mockMailer.On("SendVerification", ctx, mock.Anything).Return(errors.New("smtp unreachable"))

	resp, err := uc.ResendVerification(ctx, ResendVerificationRequest{ID: 4})

	require.NotNil(t, resp)
	var notification *pkgerrors.NotificationError
	assert.ErrorAs(t, err, &notification)
}
