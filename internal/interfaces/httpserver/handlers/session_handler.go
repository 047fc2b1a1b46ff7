package handlers

import (
	"context"

	"voiceagent-server/internal/domain/session"
)

// SessionHandler handles session-related HTTP requests.
type SessionHandler struct {
	service session.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(service session.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// Admit runs the embed admission flow and returns join credentials.
func (h *SessionHandler) Admit(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
	return h.service.Admit(ctx, params)
}

// End records the worker's close callback.
func (h *SessionHandler) End(ctx context.Context, sessionID string, params session.EndParams) (*session.Session, error) {
	return h.service.End(ctx, sessionID, params)
}

// Get returns a session with transcript, owner-scoped.
func (h *SessionHandler) Get(ctx context.Context, sessionID, userID string) (*session.Session, error) {
	return h.service.Get(ctx, sessionID, userID)
}

// ListByAgent returns an agent's recent sessions, owner-scoped.
func (h *SessionHandler) ListByAgent(ctx context.Context, agentID, userID string) ([]session.Session, error) {
	return h.service.ListByAgent(ctx, agentID, userID)
}

// Stats aggregates the user's session statistics.
func (h *SessionHandler) Stats(ctx context.Context, userID string) (*session.Stats, error) {
	return h.service.Stats(ctx, userID)
}
