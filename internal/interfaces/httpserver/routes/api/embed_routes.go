package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/metrics"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/middlewares"
	"voiceagent-server/internal/interfaces/httpserver/requests"
	"voiceagent-server/internal/interfaces/httpserver/responses"
	"voiceagent-server/internal/utils/platformerrors"
)

// RegisterEmbedRoutes registers the public widget admission endpoint. It is
// unauthenticated by design and rate limited per client IP.
func RegisterEmbedRoutes(router *gin.RouterGroup, handler *handlers.SessionHandler, cfg *config.Config) {
	embed := router.Group("/embed")
	embed.POST("/token", middlewares.RateLimit(cfg.EmbedRatePerMinute), embedToken(handler))
}

// embedToken godoc
// @Summary      Start an embedded session
// @Description  Validates the embed token, checks the owner's concurrency quota, provisions a room and returns join credentials for the widget.
// @Tags         Embed
// @Accept       json
// @Produce      json
// @Param        request body requests.EmbedTokenRequest true "Embed token"
// @Success      200 {object} responses.EmbedTokenResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      429 {object} responses.ErrorResponse
// @Router       /api/embed/token [post]
func embedToken(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.EmbedTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EmbedToken == "" {
			metrics.RecordAdmission("invalid_request")
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "embed_token is required")
			return
		}

		admission, err := handler.Admit(c.Request.Context(), session.AdmitParams{
			EmbedToken: req.EmbedToken,
			Origin:     c.GetHeader("Origin"),
		})
		if err != nil {
			metrics.RecordAdmission("denied")
			responses.HandleError(c, err, "failed to start session")
			return
		}

		metrics.RecordAdmission("allowed")
		c.JSON(http.StatusOK, responses.NewEmbedTokenResponse(admission))
	}
}
