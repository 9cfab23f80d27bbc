package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	pkgerrors "user-management-service/pkg/errors"
)

// handleError converts usecase errors to plain-text HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var notification *pkgerrors.NotificationError
	if errors.As(err, &notification) {
		c.String(notification.HTTPStatus(), "The verification email could not be sent. Please try again later.")
		return
	}

	var statuser pkgerrors.HTTPStatuser
	if errors.As(err, &statuser) {
		status := statuser.HTTPStatus()
		if status < http.StatusInternalServerError {
			c.String(status, err.Error())
			return
		}
	}

	c.String(http.StatusInternalServerError, "An internal error occurred.")
}

// formatBindingError renders binding failures as one line per field.
func formatBindingError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Request body is invalid."
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required.", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid.", fe.Field()))
		}
	}
	return strings.Join(msgs, "\n")
}
