package dbschema

import (
	"time"

	"github.com/lib/pq"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Agent{})
}

// Agent represents the persisted voice agent schema.
type Agent struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"type:uuid;not null;index"`
	Name   string `gorm:"type:text;not null"`
	Slug   string `gorm:"type:text;not null;uniqueIndex"`

	LLMProvider  string  `gorm:"type:text;not null;default:'gemini'"`
	LLMModel     string  `gorm:"type:text;not null;default:'gemini-2.5-flash'"`
	LLMAPIKeyEnc *string `gorm:"type:text"`

	SystemPrompt   string `gorm:"type:text;not null"`
	WelcomeMessage string `gorm:"type:text;not null"`

	SarvamAPIKeyEnc *string `gorm:"type:text"`
	STTLanguageCode string  `gorm:"type:text;not null;default:'en-IN'"`
	TTSVoice        string  `gorm:"type:text;not null;default:'anushka'"`
	TTSLanguageCode string  `gorm:"type:text;not null;default:'en-IN'"`

	MaxCallDurationSec int `gorm:"not null;default:300"`

	AllowedDomains pq.StringArray `gorm:"type:text[];not null"`
	EmbedToken     string         `gorm:"type:text;not null;uniqueIndex"`

	IsActive  bool `gorm:"not null;default:true;index"`
	IsPreview bool `gorm:"not null;default:false;index:idx_agents_preview_expiry"`

	DeleteAfter *time.Time `gorm:"index:idx_agents_preview_expiry"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewSchemaAgent converts a domain agent into a schema instance.
func NewSchemaAgent(a *agent.Agent) *Agent {
	if a == nil {
		return nil
	}
	return &Agent{
		ID:                 a.ID,
		UserID:             a.UserID,
		Name:               a.Name,
		Slug:               a.Slug,
		LLMProvider:        a.LLMProvider,
		LLMModel:           a.LLMModel,
		LLMAPIKeyEnc:       a.LLMAPIKeyEnc,
		SystemPrompt:       a.SystemPrompt,
		WelcomeMessage:     a.WelcomeMessage,
		SarvamAPIKeyEnc:    a.SarvamAPIKeyEnc,
		STTLanguageCode:    a.STTLanguageCode,
		TTSVoice:           a.TTSVoice,
		TTSLanguageCode:    a.TTSLanguageCode,
		MaxCallDurationSec: a.MaxCallDurationSec,
		AllowedDomains:     pq.StringArray(a.AllowedDomains),
		EmbedToken:         a.EmbedToken,
		IsActive:           a.IsActive,
		IsPreview:          a.IsPreview,
		DeleteAfter:        a.DeleteAfter,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// EtoD converts a schema agent back to the domain representation.
func (a *Agent) EtoD() *agent.Agent {
	if a == nil {
		return nil
	}
	return &agent.Agent{
		ID:                 a.ID,
		UserID:             a.UserID,
		Name:               a.Name,
		Slug:               a.Slug,
		LLMProvider:        a.LLMProvider,
		LLMModel:           a.LLMModel,
		LLMAPIKeyEnc:       a.LLMAPIKeyEnc,
		SystemPrompt:       a.SystemPrompt,
		WelcomeMessage:     a.WelcomeMessage,
		SarvamAPIKeyEnc:    a.SarvamAPIKeyEnc,
		STTLanguageCode:    a.STTLanguageCode,
		TTSVoice:           a.TTSVoice,
		TTSLanguageCode:    a.TTSLanguageCode,
		MaxCallDurationSec: a.MaxCallDurationSec,
		AllowedDomains:     []string(a.AllowedDomains),
		EmbedToken:         a.EmbedToken,
		IsActive:           a.IsActive,
		IsPreview:          a.IsPreview,
		DeleteAfter:        a.DeleteAfter,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
