package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/service"
	"github.com/jirapat-s/ticketline/pkg/response"
)

const (
	// ContextKeyUsername is the context key for the authenticated username
	ContextKeyUsername = "username"
	// ContextKeyRole is the context key for the authenticated role
	ContextKeyRole = "role"
)

// RequireAuth verifies the bearer token and stores the caller's
// identity in the gin context. Missing, malformed and expired tokens
// all abort with 401.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("MISSING_TOKEN", "authorization header with bearer token is required"))
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("TOKEN_EXPIRED", "token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "token is invalid"))
			return
		}

		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, string(claims.Role))

		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated caller has the
// admin role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRole)
		if role != string(domain.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

// GetUsername returns the authenticated username from the gin context
func GetUsername(c *gin.Context) (string, bool) {
	username := c.GetString(ContextKeyUsername)
	return username, username != ""
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
