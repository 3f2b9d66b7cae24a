package auth

import "cabbooking/internal/domain"

const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

type PasswordGrantRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshGrantRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SetSessionRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" binding:"required"`
}

type UpdateUserRequest struct {
	Password string `json:"password" binding:"required"`
}

// Session is what every successful token operation returns.
type Session struct {
	AccessToken  string               `json:"access_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	ExpiresAt    int64                `json:"expires_at"`
	RefreshToken string               `json:"refresh_token"`
	Purpose      domain.TokenPurpose  `json:"purpose"`
	User         domain.AdminIdentity `json:"user"`
}
