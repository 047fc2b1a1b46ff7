package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/infrastructure/metrics"
)

// Metrics records HTTP request duration by method, route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
