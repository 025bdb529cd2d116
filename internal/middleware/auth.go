// Package middleware provides Gin HTTP middleware for authentication, rate
// limiting, security headers, request IDs, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RequestID → Metrics → RateLimit → Auth → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth so brute-force traffic is rejected before any
// signature check or DB work. Auth populates the caller identity; handlers
// read it from the context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/auth"
)

const (
	// UsernameKey is the gin.Context key under which the authenticated
	// username (the account email) is stored.
	UsernameKey = "username"
)

// AuthMiddleware validates the Bearer access token on every request and
// stores the authenticated username in the context. Tokens are checked with
// full claims validation, expiry included; only the refresh flow accepts
// expired tokens, and that flow does not pass through here.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		c.Set(UsernameKey, claims.Subject)
		c.Next()
	}
}

// Username returns the authenticated username stored by AuthMiddleware, or
// an empty string on unauthenticated routes.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}
