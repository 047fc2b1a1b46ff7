package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/infrastructure/auth"
	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/middlewares"
)

// Routes holds the API route configuration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
	cache    *cache.RedisCache
	log      zerolog.Logger
}

// NewRoutes creates a new API routes instance.
func NewRoutes(handlerProvider *handlers.Provider, cfg *config.Config, rc *cache.RedisCache, log zerolog.Logger) *Routes {
	return &Routes{
		handlers: handlerProvider,
		cfg:      cfg,
		cache:    rc,
		log:      log,
	}
}

// Register registers all API routes on the engine. Routes under /api are
// public or bearer-authenticated; routes under /internal require the
// shared worker secret.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	workerAuth := middlewares.WorkerAuth(r.cfg.WorkerSecret, r.log)

	api := engine.Group("/api")
	RegisterAuthRoutes(api, r.handlers.Auth, authMiddleware)
	RegisterAgentRoutes(api, r.handlers.Agent, r.handlers.Session, authMiddleware, r.cache, r.cfg, r.log)
	RegisterEmbedRoutes(api, r.handlers.Session, r.cfg)
	RegisterSessionRoutes(api, r.handlers.Session, authMiddleware, workerAuth)
	RegisterDashboardRoutes(api, r.handlers.Session, authMiddleware, r.cache, r.log)

	internal := engine.Group("/internal")
	internal.Use(workerAuth)
	RegisterInternalRoutes(internal, r.handlers.Agent)
}

// currentUserID returns the authenticated user's ID set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(auth.ContextUserIDKey)
}
