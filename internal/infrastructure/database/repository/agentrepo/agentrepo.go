package agentrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/infrastructure/database/dbschema"
)

type AgentGormRepository struct {
	db *gorm.DB
}

var _ agent.Store = (*AgentGormRepository)(nil)

func NewAgentGormRepository(db *gorm.DB) agent.Store {
	return &AgentGormRepository{db: db}
}

func (repo *AgentGormRepository) Create(ctx context.Context, a *agent.Agent) error {
	return repo.db.WithContext(ctx).Create(dbschema.NewSchemaAgent(a)).Error
}

func (repo *AgentGormRepository) GetByID(ctx context.Context, id string) (*agent.Agent, error) {
	var entity dbschema.Agent
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, agent.ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *AgentGormRepository) GetOwned(ctx context.Context, id, userID string) (*agent.Agent, error) {
	var entity dbschema.Agent
	err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, agent.ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *AgentGormRepository) GetByEmbedToken(ctx context.Context, token string) (*agent.Agent, error) {
	var entity dbschema.Agent
	err := repo.db.WithContext(ctx).
		Where("embed_token = ? AND is_active = ?", token, true).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, agent.ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *AgentGormRepository) ListByOwner(ctx context.Context, userID string) ([]agent.Listing, error) {
	var entities []dbschema.Agent
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND is_preview = ?", userID, false).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	listings := make([]agent.Listing, 0, len(entities))
	for i := range entities {
		var count int64
		err := repo.db.WithContext(ctx).
			Model(&dbschema.AgentSession{}).
			Where("agent_id = ? AND started_at >= ?", entities[i].ID, time.Now().AddDate(0, 0, -30)).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		listings = append(listings, agent.Listing{
			Agent:           entities[i].EtoD(),
			SessionCount30d: count,
		})
	}
	return listings, nil
}

func (repo *AgentGormRepository) Update(ctx context.Context, a *agent.Agent) error {
	return repo.db.WithContext(ctx).Save(dbschema.NewSchemaAgent(a)).Error
}

func (repo *AgentGormRepository) DeleteExpiredPreviews(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("is_preview = ? AND delete_after IS NOT NULL AND delete_after <= ?", true, now).
		Delete(&dbschema.Agent{})
	return result.RowsAffected, result.Error
}
