package responses

import (
	"fmt"
	"time"

	"voiceagent-server/internal/domain/agent"
)

// AgentResponse mirrors the dashboard-safe agent fields. Encrypted API keys
// are never serialized back to the client.
type AgentResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	LLMProvider        string    `json:"llm_provider"`
	LLMModel           string    `json:"llm_model"`
	SystemPrompt       string    `json:"system_prompt"`
	WelcomeMessage     string    `json:"welcome_message"`
	STTLanguageCode    string    `json:"stt_language_code"`
	TTSVoice           string    `json:"tts_voice"`
	TTSLanguageCode    string    `json:"tts_language_code"`
	MaxCallDurationSec int       `json:"max_call_duration_sec"`
	AllowedDomains     []string  `json:"allowed_domains"`
	EmbedToken         string    `json:"embed_token"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AgentListingResponse is an agent plus its 30-day session count.
type AgentListingResponse struct {
	AgentResponse
	SessionCount30d int64 `json:"session_count_30d"`
}

// CreateAgentResponse is returned by agent creation with the widget embed
// details. Preview agents additionally carry their expiry.
type CreateAgentResponse struct {
	AgentID     string `json:"agentId"`
	Slug        string `json:"slug"`
	EmbedToken  string `json:"embedToken"`
	EmbedURL    string `json:"embedUrl"`
	DeleteAfter string `json:"deleteAfter,omitempty"`
	ExpiresIn   string `json:"expiresIn,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewAgentResponse converts a domain agent to its dashboard view.
func NewAgentResponse(a *agent.Agent) AgentResponse {
	return AgentResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		Name:               a.Name,
		Slug:               a.Slug,
		LLMProvider:        a.LLMProvider,
		LLMModel:           a.LLMModel,
		SystemPrompt:       a.SystemPrompt,
		WelcomeMessage:     a.WelcomeMessage,
		STTLanguageCode:    a.STTLanguageCode,
		TTSVoice:           a.TTSVoice,
		TTSLanguageCode:    a.TTSLanguageCode,
		MaxCallDurationSec: a.MaxCallDurationSec,
		AllowedDomains:     a.AllowedDomains,
		EmbedToken:         a.EmbedToken,
		IsActive:           a.IsActive,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// NewAgentListingsResponse converts owner listings to the dashboard view.
func NewAgentListingsResponse(listings []agent.Listing) []AgentListingResponse {
	out := make([]AgentListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, AgentListingResponse{
			AgentResponse:   NewAgentResponse(l.Agent),
			SessionCount30d: l.SessionCount30d,
		})
	}
	return out
}

// NewCreateAgentResponse builds the creation payload with an embed URL the
// dashboard can copy straight into the widget snippet.
func NewCreateAgentResponse(a *agent.Agent, baseURL string) CreateAgentResponse {
	resp := CreateAgentResponse{
		AgentID:    a.ID,
		Slug:       a.Slug,
		EmbedToken: a.EmbedToken,
		EmbedURL:   fmt.Sprintf("%s/embed/%s?token=%s", baseURL, a.Slug, a.EmbedToken),
	}
	if a.IsPreview && a.DeleteAfter != nil {
		resp.DeleteAfter = a.DeleteAfter.Format(time.RFC3339)
		resp.ExpiresIn = "5 minutes"
	}
	return resp
}
