package session

import "time"

// TranscriptTurn is one utterance in a conversation, as reported by the
// worker on session close.
type TranscriptTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Transcript is the ordered sequence of turns for one session.
type Transcript []TranscriptTurn

// Session is one real-time conversation attempt. The row is written once at
// admission and updated once by the worker's close callback. A session is
// active exactly when EndedAt is nil.
type Session struct {
	ID string

	// AgentID is nullable: sessions outlive their agent, which may be
	// hard-deleted by the preview sweep.
	AgentID *string

	RoomName        string
	VisitorIdentity string

	StartedAt   time.Time
	EndedAt     *time.Time
	DurationSec *int
	Transcript  Transcript
}

// Active reports whether the session has started and not yet ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// Stats are aggregate session figures across a set of agents.
type Stats struct {
	TotalSessions  int64
	TotalDuration  int64
	ActiveSessions int64
	AgentCount     int
}
