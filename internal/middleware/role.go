package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if r, _ := role.(string); r != string(requiredRole) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly requires an admin login session. Recovery sessions may only change the password.
func AdminOnly() gin.HandlerFunc {
	requireAdmin := RequireRole(domain.RoleAdmin)
	return func(c *gin.Context) {
		if c.GetString(CtxPurpose) == string(domain.PurposeRecovery) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Recovery session cannot be used here")
			c.Abort()
			return
		}
		requireAdmin(c)
	}
}

func CustomerOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleCustomer)
}
