// Package handlers implements the HTTP handlers of the metadata platform API.
// Handlers bind and validate request bodies, call repositories and services,
// and map tagged errors to status codes; they never issue SQL themselves.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/auth"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/telemetry"
)

// AuthHandlers handles the login and token refresh endpoints
type AuthHandlers struct {
	svc *auth.Service
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	AccessToken  string `json:"accessToken" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginHandler verifies username and password and issues a fresh token pair.
// Unknown usernames and wrong passwords produce the same response so accounts
// cannot be enumerated.
// PUT /auth/basic
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid username or password",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Login failed",
			})
			return
		}

		telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
		c.JSON(http.StatusOK, pair)
	}
}

// RefreshHandler exchanges an access/refresh token pair for a pair with a
// fresh access token. The access token may be expired; its signature, issuer,
// and audience are still verified. The refresh token is returned unchanged.
// POST /auth/refresh
func (h *AuthHandlers) RefreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		pair, err := h.svc.Refresh(c.Request.Context(), req.AccessToken, req.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				telemetry.TokenRefreshTotal.WithLabelValues("invalid_token").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid token",
				})
			case errors.Is(err, auth.ErrInvalidRefreshToken):
				telemetry.TokenRefreshTotal.WithLabelValues("invalid_refresh_token").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid refresh token",
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Token refresh failed",
				})
			}
			return
		}

		telemetry.TokenRefreshTotal.WithLabelValues("success").Inc()
		c.JSON(http.StatusOK, pair)
	}
}
