package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/middleware"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
	jwt     *jwt.Service
	hub     *Hub
	log     *zap.Logger
}

func NewHandler(service *Service, jwtService *jwt.Service, hub *Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, jwt: jwtService, hub: hub, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.Token)
	rg.POST("/session", h.SetSession)
	rg.POST("/recover", h.Recover)
	rg.GET("/events", h.Events)

	authed := rg.Group("")
	authed.Use(middleware.JWTAuth(h.jwt))
	authed.POST("/logout", h.Logout)

	active := authed.Group("")
	active.Use(middleware.SessionActive(h.service), middleware.RequireRole(domain.RoleAdmin))
	active.GET("/user", h.GetUser)
	active.PUT("/user", h.UpdateUser)
}

// Token handles POST /token?grant_type=password|refresh_token.
func (h *Handler) Token(c *gin.Context) {
	switch c.Query("grant_type") {
	case GrantPassword:
		var req PasswordGrantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
			return
		}
		sess, err := h.service.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, sess)

	case GrantRefreshToken:
		var req RefreshGrantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "refresh_token is required")
			return
		}
		sess, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, sess)

	default:
		response.Error(c, http.StatusBadRequest, "UNSUPPORTED_GRANT_TYPE", "grant_type must be password or refresh_token")
	}
}

func (h *Handler) SetSession(c *gin.Context) {
	var req SetSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "access_token and refresh_token are required")
		return
	}
	sess, err := h.service.SetSession(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sess)
}

func (h *Handler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email is required")
		return
	}
	if err := h.service.RequestRecovery(c.Request.Context(), req.Email); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), c.GetString(middleware.CtxSessionID)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "password is required")
		return
	}
	sess, err := h.service.UpdateCredential(c.Request.Context(),
		c.GetString(middleware.CtxUserID),
		c.GetString(middleware.CtxSessionID),
		req.Password,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sess)
}

// Events upgrades to a websocket carrying session events.
//
// Endpoint: GET /events?token=ACCESS_TOKEN
func (h *Handler) Events(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil || claims.SessionID == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	active, err := h.service.FamilyActive(c.Request.Context(), claims.SessionID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !active {
		response.Error(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session is no longer valid")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, claims.UserID, claims.SessionID)
}
