package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when no session matches the given id.
var ErrSessionNotFound = errors.New("session not found")

// Store is the durable session ledger. It is the sole writer of session
// rows; the room provisioner and credential issuer never persist state.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)

	// CountActive counts sessions for the agent that have started but not
	// ended. This is the only definition of "active" used by quota checks.
	CountActive(ctx context.Context, agentID string) (int64, error)

	// ListByAgent returns the agent's sessions newest first, capped at limit.
	ListByAgent(ctx context.Context, agentID string, limit int) ([]Session, error)

	// End sets the end timestamp, duration and transcript on the session and
	// returns the updated row. A nil transcript leaves the stored one alone.
	// There is no double-close protection: a second call overwrites fields.
	End(ctx context.Context, id string, endedAt time.Time, durationSec *int, transcript Transcript) (*Session, error)

	// Stats aggregates totals over the given agents.
	Stats(ctx context.Context, agentIDs []string) (*Stats, error)
}
