package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-service/internal/usecase/user"
	pkgerrors "user-management-service/pkg/errors"
)

// LoginRequest carries credentials from the query string or a form body.
type LoginRequest struct {
	Email    *string `form:"email" json:"email" binding:"required"`
	Password *string `form:"password" json:"password" binding:"required"`
}

const (
	msgRegistered       = "Registration successful. Please check your email to verify your account."
	msgVerified         = "Email verified successfully."
	msgLoggedIn         = "Login successful."
	msgVerificationSent = "Verification email sent."
)

// Register handles POST /users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid register request", zap.Error(err))
		c.String(http.StatusBadRequest, formatBindingError(err))
		return
	}

	h.log.Info("Gin Register request", zap.String("email", *req.Email))

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Name:     *req.Name,
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		var notification *pkgerrors.NotificationError
		if resp != nil && errors.As(err, &notification) {
			h.log.Warn("Gin Register stored user but email failed", zap.Int64("id", resp.ID), zap.Error(err))
			c.String(http.StatusAccepted, fmt.Sprintf(
				"Registration successful, but the verification email could not be sent. "+
					"Request a new one with POST /users/%d/verification/resend.", resp.ID))
			return
		}
		h.log.Error("Gin Register failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, msgRegistered)
}

// VerifyEmail handles GET /users/verify?token=
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	if err := h.uc.VerifyEmail(c.Request.Context(), user.VerifyEmailRequest{Token: c.Query("token")}); err != nil {
		h.log.Warn("Gin VerifyEmail failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, msgVerified)
}

// Login handles POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warn("Invalid login request", zap.Error(err))
		c.String(http.StatusBadRequest, formatBindingError(err))
		return
	}

	if err := h.uc.Login(c.Request.Context(), user.LoginRequest{Email: *req.Email, Password: *req.Password}); err != nil {
		h.log.Warn("Gin Login failed", zap.String("email", *req.Email), zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, msgLoggedIn)
}

// ResendVerification handles POST /users/:id/verification/resend
func (h *UserHandler) ResendVerification(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	h.log.Info("Gin ResendVerification request", zap.Int64("id", id))

	if _, err := h.uc.ResendVerification(c.Request.Context(), user.ResendVerificationRequest{ID: id}); err != nil {
		h.log.Error("Gin ResendVerification failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, msgVerificationSent)
}
