package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(AgentSession{})
}

// JSONTranscript stores the conversation transcript as a jsonb column.
type JSONTranscript session.Transcript

// Value implements driver.Valuer.
func (t JSONTranscript) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *JSONTranscript) Scan(value interface{}) error {
	if value == nil {
		*t = JSONTranscript{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported transcript column type %T", value)
	}
	return json.Unmarshal(raw, t)
}

// AgentSession is one session ledger row. AgentID is nullable and set to
// null when the owning agent is deleted, so session history survives agent
// removal.
type AgentSession struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	AgentID         *string        `gorm:"type:uuid;index"`
	Agent           *Agent         `gorm:"constraint:OnDelete:SET NULL"`
	LiveKitRoomName string         `gorm:"column:livekit_room_name;type:text;not null"`
	VisitorIdentity *string        `gorm:"type:text"`
	StartedAt       time.Time      `gorm:"not null;index"`
	EndedAt         *time.Time     ``
	DurationSec     *int           ``
	Transcript      JSONTranscript `gorm:"type:jsonb;not null;default:'[]'"`
}

// NewSchemaAgentSession converts a domain session into a schema instance.
func NewSchemaAgentSession(s *session.Session) *AgentSession {
	if s == nil {
		return nil
	}
	entity := &AgentSession{
		ID:              s.ID,
		AgentID:         s.AgentID,
		LiveKitRoomName: s.RoomName,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		DurationSec:     s.DurationSec,
		Transcript:      JSONTranscript(s.Transcript),
	}
	if s.VisitorIdentity != "" {
		v := s.VisitorIdentity
		entity.VisitorIdentity = &v
	}
	return entity
}

// EtoD converts a schema session back to the domain representation.
func (s *AgentSession) EtoD() *session.Session {
	if s == nil {
		return nil
	}
	out := &session.Session{
		ID:          s.ID,
		AgentID:     s.AgentID,
		RoomName:    s.LiveKitRoomName,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		DurationSec: s.DurationSec,
		Transcript:  session.Transcript(s.Transcript),
	}
	if s.VisitorIdentity != nil {
		out.VisitorIdentity = *s.VisitorIdentity
	}
	return out
}
