package agent

import "time"

// Agent is a tenant-owned voice agent configuration. The embed token is a
// bearer capability: possession is sufficient to start sessions against the
// agent, so it must stay globally unique.
type Agent struct {
	ID     string
	UserID string
	Name   string
	Slug   string

	// LLM config
	LLMProvider  string
	LLMModel     string
	LLMAPIKeyEnc *string // encrypted at rest, never returned to the dashboard

	// Personality
	SystemPrompt   string
	WelcomeMessage string

	// Voice config (Sarvam AI)
	SarvamAPIKeyEnc *string
	STTLanguageCode string
	TTSVoice        string
	TTSLanguageCode string

	// Behavior
	MaxCallDurationSec int

	// Embed security. An empty allow-list accepts any origin: agents that
	// haven't configured a domain yet are open by default.
	AllowedDomains []string
	EmbedToken     string

	// Status
	IsActive bool

	// Preview agents carry a soft TTL and are purged by the background sweep.
	IsPreview   bool
	DeleteAfter *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Listing is an agent plus dashboard statistics.
type Listing struct {
	*Agent
	SessionCount30d int64
}

// CreateParams are the caller-supplied fields for creating an agent.
// API keys arrive in plaintext and are encrypted before persistence.
type CreateParams struct {
	Name               string
	LLMModel           string
	LLMAPIKey          string
	SystemPrompt       string
	WelcomeMessage     string
	SarvamAPIKey       string
	STTLanguageCode    string
	TTSVoice           string
	TTSLanguageCode    string
	MaxCallDurationSec int
	AllowedDomains     []string
}

// Patch is an explicit partial update: a nil field means "leave unchanged",
// a non-nil field overwrites the stored value.
type Patch struct {
	Name               *string
	LLMModel           *string
	LLMAPIKey          *string
	SystemPrompt       *string
	WelcomeMessage     *string
	SarvamAPIKey       *string
	STTLanguageCode    *string
	TTSVoice           *string
	TTSLanguageCode    *string
	MaxCallDurationSec *int
	AllowedDomains     *[]string
	IsActive           *bool
}

// WorkerConfig is the decrypted configuration handed to the conversation
// worker over the internal interface. It must never cross the public network.
type WorkerConfig struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Slug               string  `json:"slug"`
	LLMProvider        string  `json:"llm_provider"`
	LLMModel           string  `json:"llm_model"`
	LLMAPIKey          *string `json:"llm_api_key"`
	SystemPrompt       string  `json:"system_prompt"`
	WelcomeMessage     string  `json:"welcome_message"`
	SarvamAPIKey       *string `json:"sarvam_api_key"`
	STTLanguageCode    string  `json:"stt_language_code"`
	TTSVoice           string  `json:"tts_voice"`
	TTSLanguageCode    string  `json:"tts_language_code"`
	MaxCallDurationSec int     `json:"max_call_duration_sec"`
}
