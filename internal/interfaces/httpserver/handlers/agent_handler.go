package handlers

import (
	"context"

	"voiceagent-server/internal/domain/agent"
)

// AgentHandler handles agent-related HTTP requests.
type AgentHandler struct {
	service agent.Service
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(service agent.Service) *AgentHandler {
	return &AgentHandler{service: service}
}

// Create creates a new voice agent for the user.
func (h *AgentHandler) Create(ctx context.Context, userID string, params agent.CreateParams) (*agent.Agent, error) {
	return h.service.Create(ctx, userID, params)
}

// CreatePreview creates a short-lived preview agent.
func (h *AgentHandler) CreatePreview(ctx context.Context, userID string, params agent.CreateParams) (*agent.Agent, error) {
	return h.service.CreatePreview(ctx, userID, params)
}

// List returns the user's agents with session counts.
func (h *AgentHandler) List(ctx context.Context, userID string) ([]agent.Listing, error) {
	return h.service.List(ctx, userID)
}

// Get returns one of the user's agents.
func (h *AgentHandler) Get(ctx context.Context, id, userID string) (*agent.Agent, error) {
	return h.service.Get(ctx, id, userID)
}

// Update applies a partial update to one of the user's agents.
func (h *AgentHandler) Update(ctx context.Context, id, userID string, patch agent.Patch) (*agent.Agent, error) {
	return h.service.Update(ctx, id, userID, patch)
}

// Deactivate soft-deletes one of the user's agents.
func (h *AgentHandler) Deactivate(ctx context.Context, id, userID string) error {
	return h.service.Deactivate(ctx, id, userID)
}

// WorkerConfig returns the decrypted runtime configuration for the worker.
func (h *AgentHandler) WorkerConfig(ctx context.Context, id string) (*agent.WorkerConfig, error) {
	return h.service.WorkerConfig(ctx, id)
}
