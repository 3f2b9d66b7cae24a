package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for a service error.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}

	var verr domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		ErrorWithDetails(c, status, code, msg, gin.H{"field": verr.Field})
		return
	}
	Error(c, status, code, msg)
}

// Classify maps an error onto an HTTP status and an envelope code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusTooManyRequests, "ACCOUNT_LOCKED"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, domain.ErrRefreshTokenReused):
		return http.StatusUnauthorized, "REFRESH_TOKEN_REUSED"
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"
	case domain.IsValidation(err):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	case domain.IsAuth(err):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case domain.IsConflict(err):
		return http.StatusConflict, "CONFLICT"
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
