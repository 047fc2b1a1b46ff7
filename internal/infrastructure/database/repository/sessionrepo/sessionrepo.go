package sessionrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/database/dbschema"
)

type SessionGormRepository struct {
	db *gorm.DB
}

var _ session.Store = (*SessionGormRepository)(nil)

func NewSessionGormRepository(db *gorm.DB) session.Store {
	return &SessionGormRepository{db: db}
}

func (repo *SessionGormRepository) Create(ctx context.Context, s *session.Session) error {
	return repo.db.WithContext(ctx).Create(dbschema.NewSchemaAgentSession(s)).Error
}

func (repo *SessionGormRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	var entity dbschema.AgentSession
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *SessionGormRepository) CountActive(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.AgentSession{}).
		Where("agent_id = ? AND ended_at IS NULL", agentID).
		Count(&count).Error
	return count, err
}

func (repo *SessionGormRepository) ListByAgent(ctx context.Context, agentID string, limit int) ([]session.Session, error) {
	var entities []dbschema.AgentSession
	err := repo.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("started_at DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]session.Session, 0, len(entities))
	for i := range entities {
		sessions = append(sessions, *entities[i].EtoD())
	}
	return sessions, nil
}

func (repo *SessionGormRepository) End(ctx context.Context, id string, endedAt time.Time, durationSec *int, transcript session.Transcript) (*session.Session, error) {
	var entity dbschema.AgentSession
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	entity.EndedAt = &endedAt
	entity.DurationSec = durationSec
	if transcript != nil {
		entity.Transcript = dbschema.JSONTranscript(transcript)
	}

	if err := repo.db.WithContext(ctx).Save(&entity).Error; err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *SessionGormRepository) Stats(ctx context.Context, agentIDs []string) (*session.Stats, error) {
	var row struct {
		TotalSessions  int64
		TotalDuration  *int64
		ActiveSessions int64
	}
	err := repo.db.WithContext(ctx).
		Model(&dbschema.AgentSession{}).
		Select(
			"COUNT(id) AS total_sessions, "+
				"SUM(duration_sec) AS total_duration, "+
				"COUNT(CASE WHEN ended_at IS NULL THEN 1 END) AS active_sessions").
		Where("agent_id IN ?", agentIDs).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &session.Stats{
		TotalSessions:  row.TotalSessions,
		ActiveSessions: row.ActiveSessions,
	}
	if row.TotalDuration != nil {
		stats.TotalDuration = *row.TotalDuration
	}
	return stats, nil
}
