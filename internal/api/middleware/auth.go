// internal/api/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/config"
)

// CookieAuth guards the API with the single shared password. The whole
// system is single-tenant; there are no per-user accounts.
func CookieAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Password == "" {
			// Auth disabled, typically local development.
			c.Next()
			return
		}

		value, err := c.Cookie(cfg.CookieName)
		if err != nil || subtle.ConstantTimeCompare([]byte(value), []byte(cfg.Password)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
