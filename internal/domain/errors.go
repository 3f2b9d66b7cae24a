package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrCityNotFound        = errors.New("city not found")
	ErrPricingUnavailable  = errors.New("local pricing unavailable")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrUnsupportedCarType  = errors.New("unsupported car type")
	ErrUnsupportedService  = errors.New("unsupported service type")
	ErrInvalidStatus       = errors.New("invalid booking status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrStaleBooking        = errors.New("booking was modified concurrently")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrWeakPassword        = errors.New("password does not meet policy")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("account locked")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidResetLink    = errors.New("invalid or expired reset link")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token reused")
	ErrDuplicate           = errors.New("duplicate record")
	ErrUnavailable         = errors.New("service unavailable")
)

// ValidationError is returned before any store or network call is made.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// AuthError covers bad credentials, rejected tokens and unauthorized actors.
type AuthError struct {
	Msg string
	Err error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unauthorized"
}

func (e AuthError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// TransientError means the store or identity provider could not be reached.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	if e.Op == "" {
		return "service unavailable"
	}
	return fmt.Sprintf("%s: service unavailable", e.Op)
}

func (e TransientError) Unwrap() error {
	if e.Err == nil {
		return ErrUnavailable
	}
	return e.Err
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target TransientError
	return errors.As(err, &target)
}
