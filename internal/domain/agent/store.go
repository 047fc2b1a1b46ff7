package agent

import (
	"context"
	"errors"
	"time"
)

// ErrAgentNotFound is returned when no agent matches the lookup key.
var ErrAgentNotFound = errors.New("agent not found")

// Store persists agents.
type Store interface {
	Create(ctx context.Context, a *Agent) error

	// GetByID fetches an agent regardless of ownership or status.
	GetByID(ctx context.Context, id string) (*Agent, error)

	// GetOwned fetches an agent only if it belongs to userID.
	GetOwned(ctx context.Context, id, userID string) (*Agent, error)

	// GetByEmbedToken resolves an embed token to its agent. Inactive agents
	// are treated as absent so a deactivated agent stops admitting sessions.
	GetByEmbedToken(ctx context.Context, token string) (*Agent, error)

	// ListByOwner returns the user's agents (previews excluded) together
	// with their 30-day session counts, newest first.
	ListByOwner(ctx context.Context, userID string) ([]Listing, error)

	Update(ctx context.Context, a *Agent) error

	// DeleteExpiredPreviews removes preview agents whose delete_after has
	// passed and reports how many rows were purged.
	DeleteExpiredPreviews(ctx context.Context, now time.Time) (int64, error)
}
