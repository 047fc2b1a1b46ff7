package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WorkerSecretHeader carries the shared secret the conversation worker uses
// to call internal routes.
const WorkerSecretHeader = "X-Worker-Secret"

// WorkerAuth protects internal routes used by the conversation worker. The
// secret is a trust boundary: these routes hand out decrypted API keys and
// must never be reachable from the public network. An empty configured
// secret leaves the routes open, which is tolerated only outside production.
func WorkerAuth(secret string, log zerolog.Logger) gin.HandlerFunc {
	if secret == "" {
		log.Warn().Msg("WORKER_SECRET not set, internal routes are unprotected")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		provided := c.GetHeader(WorkerSecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden: invalid worker secret",
			})
			return
		}
		c.Next()
	}
}
