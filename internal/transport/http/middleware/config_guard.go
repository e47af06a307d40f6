package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/transport/http/response"
)

// ConfigBanner is shown to users while the server runs without a usable data platform.
const ConfigBanner = "Configuration de la base de données manquante. Contactez l'administrateur."

// RequireConfig answers every request with 503 while configErr is set.
func RequireConfig(configErr error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configErr != nil {
			response.Error(c, http.StatusServiceUnavailable, response.CodeConfigMissing, ConfigBanner)
			c.Abort()
			return
		}
		c.Next()
	}
}
