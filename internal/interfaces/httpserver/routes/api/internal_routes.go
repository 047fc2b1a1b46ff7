package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/responses"
)

// RegisterInternalRoutes registers the worker-facing routes. The caller is
// expected to guard the group with the worker secret middleware.
func RegisterInternalRoutes(router *gin.RouterGroup, handler *handlers.AgentHandler) {
	router.GET("/agents/:id/config", agentConfig(handler))
}

// agentConfig godoc
// @Summary      Get an agent's runtime configuration
// @Description  Returns the full agent configuration with decrypted API keys. Only reachable by the conversation worker over the internal network.
// @Tags         Internal
// @Produce      json
// @Param        id path string true "Agent ID"
// @Success      200 {object} agent.WorkerConfig
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /internal/agents/{id}/config [get]
func agentConfig(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := handler.WorkerConfig(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to load agent config")
			return
		}

		c.JSON(http.StatusOK, cfg)
	}
}
