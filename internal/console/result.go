package console

import (
	"errors"
	"time"

	"cabbooking/internal/domain"
)

const (
	ForgotPasswordPath = "/admin/forgot-password"
	LoginPath          = "/admin"

	PasswordUpdatedRedirectDelay = 3 * time.Second
)

// Result is what every session operation resolves to. Message is safe to show
// to the administrator; Err keeps the typed error for callers that branch on it.
type Result struct {
	Success       bool
	Message       string
	Err           error
	Redirect      string
	RedirectAfter time.Duration
}

func ok(msg string) Result {
	return Result{Success: true, Message: msg}
}

func fail(err error) Result {
	return Result{Message: messageFor(err), Err: err}
}

const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountLocked      = "Too many failed attempts. Please try again later."
	msgUnavailable        = "Unable to reach the server. Please try again."
	msgSessionRequired    = "Your session has expired. Please sign in again."
	msgInvalidResetLink   = "Invalid or expired reset link. Please request a new one."
	msgGeneric            = "Something went wrong. Please try again."
)

// messageFor turns an error into text for the administrator. Provider codes and
// identifiers never reach the message.
func messageFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrAccountLocked):
		return msgAccountLocked
	case errors.Is(err, domain.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, domain.ErrInvalidResetLink):
		return msgInvalidResetLink
	case domain.IsValidation(err):
		var verr domain.ValidationError
		errors.As(err, &verr)
		if verr.Msg != "" {
			return verr.Msg
		}
		return "Please check the form and try again."
	case domain.IsTransient(err):
		return msgUnavailable
	case domain.IsAuth(err):
		return msgSessionRequired
	case domain.IsNotFound(err):
		return "The requested record was not found."
	case errors.Is(err, domain.ErrInvalidTransition):
		return "That change is not allowed for the booking's current status."
	case domain.IsConflict(err):
		return "The record was changed by someone else. Refresh and try again."
	default:
		return msgGeneric
	}
}

func invalidResetLink() error {
	return domain.AuthError{Msg: "invalid or expired reset link", Err: domain.ErrInvalidResetLink}
}

func sessionRequired() error {
	return domain.AuthError{Msg: "no active admin session", Err: domain.ErrUnauthorized}
}
