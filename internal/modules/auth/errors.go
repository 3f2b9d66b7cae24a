package auth

import "cabbooking/internal/domain"

func invalidCredentials() error {
	return domain.AuthError{Msg: "invalid email or password", Err: domain.ErrInvalidCredentials}
}

func invalidRefresh() error {
	return domain.AuthError{Msg: "invalid refresh token", Err: domain.ErrInvalidRefreshToken}
}

func invalidSession() error {
	return domain.AuthError{Msg: "invalid session", Err: domain.ErrUnauthorized}
}
