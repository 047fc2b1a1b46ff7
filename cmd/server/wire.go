//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/domain/user"
	"voiceagent-server/internal/infrastructure/auth"
	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/infrastructure/database/repository/agentrepo"
	"voiceagent-server/internal/infrastructure/database/repository/sessionrepo"
	"voiceagent-server/internal/infrastructure/database/repository/userrepo"
	"voiceagent-server/internal/infrastructure/livekit"
	"voiceagent-server/internal/infrastructure/sweeper"
	"voiceagent-server/internal/interfaces/httpserver"
	"voiceagent-server/internal/utils/crypto"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	userrepo.NewUserGormRepository,
	agentrepo.NewAgentGormRepository,
	sessionrepo.NewSessionGormRepository,
	auth.NewTokenManager,
	livekit.NewTokenGenerator,
	ProvideRoomClient,
	ProvideCipher,
	ProvideCache,
	ProvideSweeper,

	// Domain providers
	ProvideUserService,
	ProvideAgentService,
	ProvideSessionService,
	session.NewQuotaEvaluator,

	// Interface providers
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideRoomClient provides a LiveKit room and dispatch client.
func ProvideRoomClient(cfg *config.Config, log zerolog.Logger) (*livekit.RoomClient, error) {
	return livekit.NewRoomClient(cfg, log)
}

// ProvideCipher provides the API key cipher.
func ProvideCipher(cfg *config.Config) (*crypto.Cipher, error) {
	return crypto.New(cfg.EncryptionKey)
}

// ProvideCache provides the optional Redis cache.
func ProvideCache(cfg *config.Config, log zerolog.Logger) (*cache.RedisCache, error) {
	return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, log)
}

// ProvideSweeper provides the preview agent sweeper.
func ProvideSweeper(agents agent.Store, rooms *livekit.RoomClient, cfg *config.Config, log zerolog.Logger) *sweeper.Sweeper {
	return sweeper.NewSweeper(agents, rooms, cfg.PreviewSweepEvery, log)
}

// ProvideUserService provides the account service.
func ProvideUserService(store user.Store, tokens *auth.TokenManager, cfg *config.Config, log zerolog.Logger) user.Service {
	return user.NewService(store, tokens, cfg.BcryptCost, log)
}

// ProvideAgentService provides the agent service.
func ProvideAgentService(store agent.Store, cipher *crypto.Cipher, cfg *config.Config, log zerolog.Logger) agent.Service {
	return agent.NewService(store, cipher, cfg.PreviewAgentTTL, log)
}

// ProvideSessionService provides the session service.
func ProvideSessionService(
	store session.Store,
	agents agent.Store,
	users user.Store,
	quota *session.QuotaEvaluator,
	rooms *livekit.RoomClient,
	creds *livekit.TokenGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) session.Service {
	return session.NewService(
		store,
		agents,
		users,
		quota,
		rooms,
		creds,
		cfg.LiveKitURL,
		cfg.AgentPoolName,
		cfg.EnforceOrigin(),
		cfg.CredentialTTLSlack,
		log,
	)
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	cfg *config.Config,
	db *gorm.DB,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
