package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxRole      = "role"
	CtxSessionID = "session_id"
	CtxPurpose   = "purpose"
	CtxToken     = "access_token"
)

// JWTAuth validates the bearer token and stores its claims on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, jwt.ErrExpiredToken) {
				code = "TOKEN_EXPIRED"
			}
			response.Error(c, http.StatusUnauthorized, code, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxSessionID, claims.SessionID)
		c.Set(CtxPurpose, claims.Purpose)
		c.Set(CtxToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
		c.Abort()
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
		c.Abort()
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// SessionChecker reports whether an admin session has been revoked.
type SessionChecker interface {
	FamilyActive(ctx context.Context, familyID string) (bool, error)
}

// SessionActive rejects tokens whose session was signed out or revoked.
// Tokens without a session id (customer tokens) pass through.
func SessionActive(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetString(CtxSessionID)
		if sid == "" {
			c.Next()
			return
		}

		active, err := checker.FamilyActive(c.Request.Context(), sid)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}
		if !active {
			response.Error(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session is no longer valid")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor builds the caller identity from the claims JWTAuth stored.
func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetString(CtxUserID),
		Role: domain.UserRole(c.GetString(CtxRole)),
	}
}
