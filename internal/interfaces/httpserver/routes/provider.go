package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/infrastructure/auth"
	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/routes/api"
)

// Provider holds all route providers.
type Provider struct {
	API    *api.Routes
	tokens *auth.TokenManager
}

// NewProvider creates a new route provider.
func NewProvider(handlerProvider *handlers.Provider, tokens *auth.TokenManager, cfg *config.Config, rc *cache.RedisCache, log zerolog.Logger) *Provider {
	return &Provider{
		API:    api.NewRoutes(handlerProvider, cfg, rc, log),
		tokens: tokens,
	}
}

// Register registers all routes on the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.API.Register(engine, p.tokens.Middleware())
}
