// Package requests contains HTTP request DTOs.
package requests

import "voiceagent-server/internal/domain/session"

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAgentRequest is the body for POST /api/agents and
// POST /api/agents/preview. API keys arrive in plaintext over TLS and are
// encrypted before they touch the database.
type CreateAgentRequest struct {
	Name               string   `json:"name"`
	LLMModel           string   `json:"llm_model"`
	LLMAPIKey          string   `json:"llm_api_key"`
	SystemPrompt       string   `json:"system_prompt"`
	WelcomeMessage     string   `json:"welcome_message"`
	SarvamAPIKey       string   `json:"sarvam_api_key"`
	STTLanguageCode    string   `json:"stt_language_code"`
	TTSVoice           string   `json:"tts_voice"`
	TTSLanguageCode    string   `json:"tts_language_code"`
	MaxCallDurationSec int      `json:"max_call_duration_sec"`
	AllowedDomains     []string `json:"allowed_domains"`
}

// UpdateAgentRequest is the body for PATCH /api/agents/:id. Every field is a
// pointer: absent means "leave unchanged", present overwrites, so partial
// updates are explicit rather than inferred from zero values.
type UpdateAgentRequest struct {
	Name               *string   `json:"name"`
	LLMModel           *string   `json:"llm_model"`
	LLMAPIKey          *string   `json:"llm_api_key"`
	SystemPrompt       *string   `json:"system_prompt"`
	WelcomeMessage     *string   `json:"welcome_message"`
	SarvamAPIKey       *string   `json:"sarvam_api_key"`
	STTLanguageCode    *string   `json:"stt_language_code"`
	TTSVoice           *string   `json:"tts_voice"`
	TTSLanguageCode    *string   `json:"tts_language_code"`
	MaxCallDurationSec *int      `json:"max_call_duration_sec"`
	AllowedDomains     *[]string `json:"allowed_domains"`
	IsActive           *bool     `json:"is_active"`
}

// EmbedTokenRequest is the body for POST /api/embed/token, the public
// endpoint the iframe widget calls to start a session.
type EmbedTokenRequest struct {
	EmbedToken string `json:"embed_token"`
}

// EndSessionRequest is the body for PATCH /api/sessions/:id/end, posted by
// the conversation worker when a call finishes.
type EndSessionRequest struct {
	DurationSec *int               `json:"duration_sec"`
	Transcript  session.Transcript `json:"transcript"`
}
