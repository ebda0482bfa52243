package response

import (
	"errors"
	"net/http"
	"strconv"

	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/validator"
	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the caller's user ID when the request carried a valid token.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &userID
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("internal error")
	}

	body := gin.H{"error": apperror.PublicMessage(err)}
	var fieldErr *apperror.FieldError
	if errors.As(err, &fieldErr) {
		body["fields"] = fieldErr.Fields
	}
	var rlErr interface{ RetryAfterSeconds() int }
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(rlErr.RetryAfterSeconds()))
	}
	c.JSON(code, body)
}

// ValidationError responds 400 with a per-field message map when the binding
// failed on validation rules, and with the plain error otherwise.
func ValidationError(c *gin.Context, message string, err error) {
	var verrs govalidator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  message,
			"fields": validator.FieldErrors(verrs),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
}

// Redirect mirrors a form submission that navigates elsewhere on success.
func Redirect(c *gin.Context, code int, message, to string, data any) {
	body := gin.H{"message": message, "redirect": to}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}
