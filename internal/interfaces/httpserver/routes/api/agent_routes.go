package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/middlewares"
	"voiceagent-server/internal/interfaces/httpserver/requests"
	"voiceagent-server/internal/interfaces/httpserver/responses"
	"voiceagent-server/internal/utils/platformerrors"
)

// RegisterAgentRoutes registers the agent management routes. List and detail
// reads go through the Redis cache; every write invalidates the owner's keys.
func RegisterAgentRoutes(router *gin.RouterGroup, handler *handlers.AgentHandler, sessions *handlers.SessionHandler, authMiddleware gin.HandlerFunc, rc *cache.RedisCache, cfg *config.Config, log zerolog.Logger) {
	ownerKey := func(c *gin.Context) string {
		return fmt.Sprintf("agents:user:%s", currentUserID(c))
	}
	// The detail key is scoped to the owner so a cache hit can never serve
	// one user's agent to another.
	detailKey := func(c *gin.Context) string {
		return fmt.Sprintf("agents:%s:user:%s", c.Param("id"), currentUserID(c))
	}
	statsKey := func(c *gin.Context) string {
		return fmt.Sprintf("dashboard:stats:user:%s", currentUserID(c))
	}

	invalidateOwner := middlewares.CacheInvalidate(rc, log, ownerKey, statsKey)
	invalidateAgent := middlewares.CacheInvalidate(rc, log, ownerKey, detailKey, statsKey)

	agents := router.Group("/agents")
	agents.Use(authMiddleware)
	agents.POST("", invalidateOwner, createAgent(handler, cfg))
	agents.POST("/preview", previewAgent(handler, cfg))
	agents.GET("", middlewares.CacheGet(rc, ownerKey, cfg.CacheTTL, log), listAgents(handler))
	agents.GET("/:id", middlewares.CacheGet(rc, detailKey, cfg.CacheTTL, log), getAgent(handler))
	agents.PATCH("/:id", invalidateAgent, updateAgent(handler))
	agents.DELETE("/:id", invalidateAgent, deleteAgent(handler))
	agents.GET("/:id/sessions", listAgentSessions(sessions))
}

func createParams(req requests.CreateAgentRequest) agent.CreateParams {
	return agent.CreateParams{
		Name:               req.Name,
		LLMModel:           req.LLMModel,
		LLMAPIKey:          req.LLMAPIKey,
		SystemPrompt:       req.SystemPrompt,
		WelcomeMessage:     req.WelcomeMessage,
		SarvamAPIKey:       req.SarvamAPIKey,
		STTLanguageCode:    req.STTLanguageCode,
		TTSVoice:           req.TTSVoice,
		TTSLanguageCode:    req.TTSLanguageCode,
		MaxCallDurationSec: req.MaxCallDurationSec,
		AllowedDomains:     req.AllowedDomains,
	}
}

// createAgent godoc
// @Summary      Create an agent
// @Description  Creates a voice agent and returns its embed credentials.
// @Tags         Agents
// @Accept       json
// @Produce      json
// @Param        request body requests.CreateAgentRequest true "Agent payload"
// @Success      201 {object} responses.CreateAgentResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents [post]
func createAgent(handler *handlers.AgentHandler, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.CreateAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body")
			return
		}

		a, err := handler.Create(c.Request.Context(), currentUserID(c), createParams(req))
		if err != nil {
			responses.HandleError(c, err, "failed to create agent")
			return
		}

		// Permanent agents embed off the app origin; previews use the
		// widget host.
		c.JSON(http.StatusCreated, responses.NewCreateAgentResponse(a, cfg.AppURL))
	}
}

// previewAgent godoc
// @Summary      Create a preview agent
// @Description  Creates a short-lived agent for trying out a configuration. It is deleted automatically after five minutes.
// @Tags         Agents
// @Accept       json
// @Produce      json
// @Param        request body requests.CreateAgentRequest true "Agent payload"
// @Success      201 {object} responses.CreateAgentResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents/preview [post]
func previewAgent(handler *handlers.AgentHandler, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.CreateAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body")
			return
		}

		a, err := handler.CreatePreview(c.Request.Context(), currentUserID(c), createParams(req))
		if err != nil {
			responses.HandleError(c, err, "failed to create preview agent")
			return
		}

		c.JSON(http.StatusCreated, responses.NewCreateAgentResponse(a, cfg.EmbedURL))
	}
}

// listAgents godoc
// @Summary      List agents
// @Description  Lists the user's agents with 30-day session counts. Preview agents are excluded.
// @Tags         Agents
// @Produce      json
// @Success      200 {array} responses.AgentListingResponse
// @Failure      401 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents [get]
func listAgents(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		listings, err := handler.List(c.Request.Context(), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to list agents")
			return
		}

		c.JSON(http.StatusOK, responses.NewAgentListingsResponse(listings))
	}
}

// getAgent godoc
// @Summary      Get an agent
// @Description  Returns one of the user's agents. Encrypted API keys are never included.
// @Tags         Agents
// @Produce      json
// @Param        id path string true "Agent ID"
// @Success      200 {object} responses.AgentResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents/{id} [get]
func getAgent(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := handler.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to get agent")
			return
		}

		c.JSON(http.StatusOK, responses.NewAgentResponse(a))
	}
}

// updateAgent godoc
// @Summary      Update an agent
// @Description  Applies a partial update. Omitted fields are left unchanged.
// @Tags         Agents
// @Accept       json
// @Produce      json
// @Param        id path string true "Agent ID"
// @Param        request body requests.UpdateAgentRequest true "Fields to change"
// @Success      200 {object} responses.AgentResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents/{id} [patch]
func updateAgent(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.UpdateAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body")
			return
		}

		patch := agent.Patch{
			Name:               req.Name,
			LLMModel:           req.LLMModel,
			LLMAPIKey:          req.LLMAPIKey,
			SystemPrompt:       req.SystemPrompt,
			WelcomeMessage:     req.WelcomeMessage,
			SarvamAPIKey:       req.SarvamAPIKey,
			STTLanguageCode:    req.STTLanguageCode,
			TTSVoice:           req.TTSVoice,
			TTSLanguageCode:    req.TTSLanguageCode,
			MaxCallDurationSec: req.MaxCallDurationSec,
			AllowedDomains:     req.AllowedDomains,
			IsActive:           req.IsActive,
		}

		a, err := handler.Update(c.Request.Context(), c.Param("id"), currentUserID(c), patch)
		if err != nil {
			responses.HandleError(c, err, "failed to update agent")
			return
		}

		c.JSON(http.StatusOK, responses.NewAgentResponse(a))
	}
}

// deleteAgent godoc
// @Summary      Deactivate an agent
// @Description  Soft-deletes an agent. Its embed token stops admitting sessions but session history is kept.
// @Tags         Agents
// @Produce      json
// @Param        id path string true "Agent ID"
// @Success      200 {object} responses.MessageResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents/{id} [delete]
func deleteAgent(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler.Deactivate(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
			responses.HandleError(c, err, "failed to deactivate agent")
			return
		}

		c.JSON(http.StatusOK, responses.MessageResponse{Message: "Agent deactivated successfully"})
	}
}

// listAgentSessions godoc
// @Summary      List an agent's sessions
// @Description  Returns the agent's most recent sessions, newest first.
// @Tags         Agents
// @Produce      json
// @Param        id path string true "Agent ID"
// @Success      200 {array} responses.SessionSummaryResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/agents/{id}/sessions [get]
func listAgentSessions(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := handler.ListByAgent(c.Request.Context(), c.Param("id"), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to list sessions")
			return
		}

		c.JSON(http.StatusOK, responses.NewSessionListResponse(sessions))
	}
}
