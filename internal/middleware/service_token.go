package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediavault/internal/pkg/response"
)

// ServiceToken gates a route group behind a static token carried in the Auth
// header. An empty expected token disables the gate.
func ServiceToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		token := c.GetHeader("Auth")
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Auth header is required")
			c.Abort()
			return
		}
		if token != expected {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID", "Invalid service token")
			c.Abort()
			return
		}

		c.Next()
	}
}
