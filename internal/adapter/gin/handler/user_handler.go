package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest represents the HTTP request body for creating, registering or updating a user.
// Fields must be present but may be empty.
type UserRequest struct {
	Name     *string `json:"name" binding:"required"`
	Email    *string `json:"email" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID                      int64      `json:"id"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	IsEmailVerified         bool       `json:"is_email_verified"`
	VerificationTokenExpiry *time.Time `json:"verification_token_expiry,omitempty"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		IsEmailVerified:         u.IsEmailVerified,
		VerificationTokenExpiry: u.VerificationTokenExpiry,
	}
}

// parseID reads the :id path parameter and answers 400 when it is not a number.
func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.String(http.StatusBadRequest, "User ID must be a valid number.")
		return 0, false
	}
	return id, true
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create user request", zap.Error(err))
		c.String(http.StatusBadRequest, formatBindingError(err))
		return
	}

	h.log.Info("Gin CreateUser request", zap.String("name", *req.Name), zap.String("email", *req.Email))

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:     *req.Name,
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		h.log.Error("Gin CreateUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	h.log.Info("Gin GetUser request", zap.Int64("id", id))

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.log.Error("Gin GetUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid update user request", zap.Error(err))
		c.String(http.StatusBadRequest, formatBindingError(err))
		return
	}

	h.log.Info("Gin UpdateUser request", zap.Int64("id", id), zap.String("name", *req.Name), zap.String("email", *req.Email))

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Name:     *req.Name,
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		h.log.Error("Gin UpdateUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	h.log.Info("Gin DeleteUser request", zap.Int64("id", id))

	if _, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.log.Error("Gin DeleteUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, "Deleted")
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.log.Info("Gin ListUsers request")

	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error("Gin ListUsers failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toUserResponse(&resp.Users[i])
	}

	c.JSON(http.StatusOK, users)
}
