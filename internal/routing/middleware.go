package routing

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"realty_leads_backend/platform/config"
)

// APIKeyAuthMiddleware validates the X-Intake-API-Key header against the
// configured key set. With no keys configured the intake endpoint is
// open, which suits same-site forms fronted by CORS and rate limits.
func APIKeyAuthMiddleware(cfg config.RoutingConfig) gin.HandlerFunc {
	keys := cfg.GetIntakeAPIKeys()
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		provided := c.GetHeader("X-Intake-API-Key")
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
	}
}
