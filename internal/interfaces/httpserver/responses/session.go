package responses

import (
	"time"

	"voiceagent-server/internal/domain/session"
)

// EmbedTokenResponse is everything the widget needs to join its session.
// It deliberately exposes nothing of the agent's configuration beyond the
// welcome message and display name.
type EmbedTokenResponse struct {
	LiveKitURL     string `json:"livekitUrl"`
	LiveKitToken   string `json:"livekitToken"`
	RoomName       string `json:"roomName"`
	SessionID      string `json:"sessionId"`
	WelcomeMessage string `json:"welcomeMessage"`
	AgentName      string `json:"agentName"`
}

// SessionSummaryResponse is one row in an agent's session history.
type SessionSummaryResponse struct {
	ID              string     `json:"id"`
	LiveKitRoomName string     `json:"livekit_room_name"`
	VisitorIdentity string     `json:"visitor_identity"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSec     *int       `json:"duration_sec"`
}

// SessionDetailResponse is the full session record including transcript.
type SessionDetailResponse struct {
	SessionSummaryResponse
	AgentID    *string            `json:"agent_id"`
	Transcript session.Transcript `json:"transcript"`
}

// EndSessionResponse acknowledges a worker close callback.
type EndSessionResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// NewEmbedTokenResponse converts an admission into the widget payload.
func NewEmbedTokenResponse(a *session.Admission) EmbedTokenResponse {
	return EmbedTokenResponse{
		LiveKitURL:     a.ServerURL,
		LiveKitToken:   a.Credential,
		RoomName:       a.RoomName,
		SessionID:      a.SessionID,
		WelcomeMessage: a.WelcomeMessage,
		AgentName:      a.AgentName,
	}
}

// NewSessionSummaryResponse converts a session to its history row.
func NewSessionSummaryResponse(s *session.Session) SessionSummaryResponse {
	return SessionSummaryResponse{
		ID:              s.ID,
		LiveKitRoomName: s.RoomName,
		VisitorIdentity: s.VisitorIdentity,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		DurationSec:     s.DurationSec,
	}
}

// NewSessionListResponse converts a session slice to history rows.
func NewSessionListResponse(sessions []session.Session) []SessionSummaryResponse {
	out := make([]SessionSummaryResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, NewSessionSummaryResponse(&sessions[i]))
	}
	return out
}

// NewSessionDetailResponse converts a session to its full record.
func NewSessionDetailResponse(s *session.Session) SessionDetailResponse {
	return SessionDetailResponse{
		SessionSummaryResponse: NewSessionSummaryResponse(s),
		AgentID:                s.AgentID,
		Transcript:             s.Transcript,
	}
}
