// Package middleware provides the session credential, request id and panic
// recovery middleware for the Gin web framework.
package middleware

import (
	"net/http"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// TokenKey is the gin context key holding the session's bearer credential
const TokenKey = "bea_token"

// notAuthenticated mirrors the feedback API's own 401 detail
const notAuthenticated = "Not authenticated"

// RequireToken returns a middleware that requires a bea_token in the session.
// The token is copied into the request context, where the feedback API client
// picks it up.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := SessionToken(c)
		if !ok {
			appErr := contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
				"Authentication required", notAuthenticated)
			_ = c.Error(appErr)
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, appErr.ToJSON())
				return
			}
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusUnauthorized)
			_, _ = c.Writer.WriteString("Nicht angemeldet")
			return
		}

		c.Set(TokenKey, token)
		c.Request = c.Request.WithContext(contextutils.WithBearerToken(c.Request.Context(), token))
		c.Next()
	}
}

// SessionToken reads the bearer credential from the session
func SessionToken(c *gin.Context) (string, bool) {
	token, ok := sessions.Default(c).Get(config.SessionTokenKey).(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// TokenFromContext returns the credential stored by RequireToken
func TokenFromContext(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// WantsJSON reports whether the caller asked for a JSON answer
func WantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}
