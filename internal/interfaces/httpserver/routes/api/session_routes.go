package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/metrics"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/requests"
	"voiceagent-server/internal/interfaces/httpserver/responses"
	"voiceagent-server/internal/utils/platformerrors"
)

// RegisterSessionRoutes registers the session routes. Reads are owner-scoped
// behind bearer auth; the end callback is posted by the worker with the
// shared secret.
func RegisterSessionRoutes(router *gin.RouterGroup, handler *handlers.SessionHandler, authMiddleware, workerAuth gin.HandlerFunc) {
	sessions := router.Group("/sessions")
	sessions.GET("/:id", authMiddleware, getSession(handler))
	sessions.PATCH("/:id/end", workerAuth, endSession(handler))
}

// getSession godoc
// @Summary      Get a session
// @Description  Returns a session with its transcript. Users can only access sessions of their own agents.
// @Tags         Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} responses.SessionDetailResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{id} [get]
func getSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := handler.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to get session")
			return
		}

		c.JSON(http.StatusOK, responses.NewSessionDetailResponse(s))
	}
}

// endSession godoc
// @Summary      End a session
// @Description  Records the final duration and transcript when the worker closes a call.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body requests.EndSessionRequest true "Close payload"
// @Success      200 {object} responses.EndSessionResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /api/sessions/{id}/end [patch]
func endSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.EndSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body")
			return
		}

		s, err := handler.End(c.Request.Context(), c.Param("id"), session.EndParams{
			DurationSec: req.DurationSec,
			Transcript:  req.Transcript,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to end session")
			return
		}

		metrics.RecordSessionEnded()
		c.JSON(http.StatusOK, responses.EndSessionResponse{
			Message:   "Session ended",
			SessionID: s.ID,
		})
	}
}
