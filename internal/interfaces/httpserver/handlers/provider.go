package handlers

import (
	"github.com/google/wire"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/domain/user"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Auth    *AuthHandler
	Agent   *AgentHandler
	Session *SessionHandler
}

// NewProvider creates a new handler provider.
func NewProvider(userService user.Service, agentService agent.Service, sessionService session.Service) *Provider {
	return &Provider{
		Auth:    NewAuthHandler(userService),
		Agent:   NewAgentHandler(agentService),
		Session: NewSessionHandler(sessionService),
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewAuthHandler,
	NewAgentHandler,
	NewSessionHandler,
	NewProvider,
)
