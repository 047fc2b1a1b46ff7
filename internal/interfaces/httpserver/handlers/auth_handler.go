package handlers

import (
	"context"

	"voiceagent-server/internal/domain/user"
)

// AuthHandler handles account-related HTTP requests.
type AuthHandler struct {
	service user.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service user.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register creates a new dashboard account.
func (h *AuthHandler) Register(ctx context.Context, email, password string) (*user.AuthResult, error) {
	return h.service.Register(ctx, email, password)
}

// Login authenticates an existing account.
func (h *AuthHandler) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	return h.service.Login(ctx, email, password)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(ctx context.Context, userID string) (*user.User, error) {
	return h.service.Get(ctx, userID)
}
