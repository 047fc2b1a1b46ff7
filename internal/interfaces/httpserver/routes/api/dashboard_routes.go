package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/middlewares"
	"voiceagent-server/internal/interfaces/httpserver/responses"
)

// Stats aggregate over every session the user has, so they are cached
// longer than the agent listings.
const statsCacheTTL = 5 * time.Minute

// RegisterDashboardRoutes registers the dashboard statistics route.
func RegisterDashboardRoutes(router *gin.RouterGroup, handler *handlers.SessionHandler, authMiddleware gin.HandlerFunc, rc *cache.RedisCache, log zerolog.Logger) {
	statsKey := func(c *gin.Context) string {
		return fmt.Sprintf("dashboard:stats:user:%s", currentUserID(c))
	}

	dashboard := router.Group("/dashboard")
	dashboard.Use(authMiddleware)
	dashboard.GET("/stats", middlewares.CacheGet(rc, statsKey, statsCacheTTL, log), dashboardStats(handler))
}

// dashboardStats godoc
// @Summary      Get dashboard statistics
// @Description  Returns session totals, talk time and active session count across the user's agents.
// @Tags         Dashboard
// @Produce      json
// @Success      200 {object} responses.DashboardStatsResponse
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/dashboard/stats [get]
func dashboardStats(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := handler.Stats(c.Request.Context(), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to fetch dashboard stats")
			return
		}

		c.JSON(http.StatusOK, responses.NewDashboardStatsResponse(stats))
	}
}
