package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/utils/crypto"
	"voiceagent-server/internal/utils/idgen"
	"voiceagent-server/internal/utils/platformerrors"
)

// Defaults applied when the caller omits optional fields.
const (
	DefaultLLMProvider    = "gemini"
	DefaultLLMModel       = "gemini-2.5-flash"
	DefaultWelcome        = "Hello! How can I help you today?"
	DefaultSTTLanguage    = "en-IN"
	DefaultTTSVoice       = "meera"
	DefaultTTSLanguage    = "en-IN"
	DefaultMaxCallSeconds = 300
)

// DefaultPreviewTTL is how long a preview agent lives before the sweep
// removes it, when no TTL is configured.
const DefaultPreviewTTL = 5 * time.Minute

// Service manages the agent lifecycle for dashboard users and exposes
// decrypted worker configuration over the internal surface.
type Service interface {
	Create(ctx context.Context, userID string, params CreateParams) (*Agent, error)
	CreatePreview(ctx context.Context, userID string, params CreateParams) (*Agent, error)
	List(ctx context.Context, userID string) ([]Listing, error)
	Get(ctx context.Context, id, userID string) (*Agent, error)
	Update(ctx context.Context, id, userID string, patch Patch) (*Agent, error)
	Deactivate(ctx context.Context, id, userID string) error
	WorkerConfig(ctx context.Context, id string) (*WorkerConfig, error)
}

type service struct {
	store      Store
	cipher     *crypto.Cipher
	previewTTL time.Duration
	log        zerolog.Logger
}

func NewService(store Store, cipher *crypto.Cipher, previewTTL time.Duration, log zerolog.Logger) Service {
	if previewTTL <= 0 {
		previewTTL = DefaultPreviewTTL
	}
	return &service{
		store:      store,
		cipher:     cipher,
		previewTTL: previewTTL,
		log:        log.With().Str("component", "agent_service").Logger(),
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the name, collapses non-alphanumeric runs to single
// hyphens and appends a random suffix for uniqueness.
func slugify(name string, suffixLen int) string {
	base := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	base = strings.Trim(base, "-")
	suffix, err := idgen.GenerateSuffix(suffixLen)
	if err != nil {
		// crypto/rand failing is unrecoverable anyway; a uuid fragment
		// keeps the slug unique.
		suffix = uuid.NewString()[:suffixLen]
	}
	return base + "-" + suffix
}

func (s *service) Create(ctx context.Context, userID string, params CreateParams) (*Agent, error) {
	return s.create(ctx, userID, params, false)
}

func (s *service) CreatePreview(ctx context.Context, userID string, params CreateParams) (*Agent, error) {
	return s.create(ctx, userID, params, true)
}

func (s *service) create(ctx context.Context, userID string, params CreateParams, preview bool) (*Agent, error) {
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.SystemPrompt) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "name and system_prompt are required", nil)
	}

	now := time.Now().UTC()
	a := &Agent{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Name:               params.Name,
		LLMProvider:        DefaultLLMProvider,
		LLMModel:           orDefault(params.LLMModel, DefaultLLMModel),
		SystemPrompt:       params.SystemPrompt,
		WelcomeMessage:     orDefault(params.WelcomeMessage, DefaultWelcome),
		STTLanguageCode:    orDefault(params.STTLanguageCode, DefaultSTTLanguage),
		TTSVoice:           orDefault(params.TTSVoice, DefaultTTSVoice),
		TTSLanguageCode:    orDefault(params.TTSLanguageCode, DefaultTTSLanguage),
		MaxCallDurationSec: params.MaxCallDurationSec,
		AllowedDomains:     params.AllowedDomains,
		EmbedToken:         uuid.NewString(),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if a.MaxCallDurationSec <= 0 {
		a.MaxCallDurationSec = DefaultMaxCallSeconds
	}
	if a.AllowedDomains == nil {
		a.AllowedDomains = []string{}
	}

	if preview {
		a.Name = "[PREVIEW] " + params.Name
		a.Slug = "preview-" + slugify(params.Name, 8)
		a.IsPreview = true
		deleteAfter := now.Add(s.previewTTL)
		a.DeleteAfter = &deleteAfter
	} else {
		a.Slug = slugify(params.Name, 6)
	}

	if params.LLMAPIKey != "" {
		enc, err := s.cipher.EncryptAPIKey(params.LLMAPIKey)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "failed to encrypt LLM API key", err)
		}
		a.LLMAPIKeyEnc = &enc
	}
	if params.SarvamAPIKey != "" {
		enc, err := s.cipher.EncryptAPIKey(params.SarvamAPIKey)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "failed to encrypt Sarvam API key", err)
		}
		a.SarvamAPIKeyEnc = &enc
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to create agent", err)
	}

	s.log.Info().
		Str("agent_id", a.ID).
		Str("user_id", userID).
		Str("slug", a.Slug).
		Bool("preview", preview).
		Msg("agent created")
	return a, nil
}

func (s *service) List(ctx context.Context, userID string) ([]Listing, error) {
	listings, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to list agents", err)
	}
	return listings, nil
}

func (s *service) Get(ctx context.Context, id, userID string) (*Agent, error) {
	a, err := s.store.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Agent not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to get agent", err)
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, id, userID string, patch Patch) (*Agent, error) {
	a, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.LLMModel != nil {
		a.LLMModel = *patch.LLMModel
	}
	if patch.LLMAPIKey != nil {
		enc, encErr := s.cipher.EncryptAPIKey(*patch.LLMAPIKey)
		if encErr != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "failed to encrypt LLM API key", encErr)
		}
		a.LLMAPIKeyEnc = &enc
	}
	if patch.SystemPrompt != nil {
		a.SystemPrompt = *patch.SystemPrompt
	}
	if patch.WelcomeMessage != nil {
		a.WelcomeMessage = *patch.WelcomeMessage
	}
	if patch.SarvamAPIKey != nil {
		enc, encErr := s.cipher.EncryptAPIKey(*patch.SarvamAPIKey)
		if encErr != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "failed to encrypt Sarvam API key", encErr)
		}
		a.SarvamAPIKeyEnc = &enc
	}
	if patch.STTLanguageCode != nil {
		a.STTLanguageCode = *patch.STTLanguageCode
	}
	if patch.TTSVoice != nil {
		a.TTSVoice = *patch.TTSVoice
	}
	if patch.TTSLanguageCode != nil {
		a.TTSLanguageCode = *patch.TTSLanguageCode
	}
	if patch.MaxCallDurationSec != nil {
		a.MaxCallDurationSec = *patch.MaxCallDurationSec
	}
	if patch.AllowedDomains != nil {
		a.AllowedDomains = *patch.AllowedDomains
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, a); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to update agent", err)
	}
	return a, nil
}

func (s *service) Deactivate(ctx context.Context, id, userID string) error {
	a, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, a); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to deactivate agent", err)
	}
	s.log.Info().Str("agent_id", id).Msg("agent deactivated")
	return nil
}

// WorkerConfig decrypts the stored API keys and returns the full runtime
// configuration. Callers must be authenticated as the conversation worker.
func (s *service) WorkerConfig(ctx context.Context, id string) (*WorkerConfig, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Agent not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to get agent", err)
	}
	if !a.IsActive {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "Agent not found or inactive", nil)
	}

	cfg := &WorkerConfig{
		ID:                 a.ID,
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
	}

	if a.LLMAPIKeyEnc != nil {
		key, decErr := s.cipher.DecryptAPIKey(*a.LLMAPIKeyEnc)
		if decErr != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal,
				fmt.Sprintf("failed to decrypt LLM API key for agent %s", a.ID), decErr)
		}
		cfg.LLMAPIKey = &key
	}
	if a.SarvamAPIKeyEnc != nil {
		key, decErr := s.cipher.DecryptAPIKey(*a.SarvamAPIKeyEnc)
		if decErr != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal,
				fmt.Sprintf("failed to decrypt Sarvam API key for agent %s", a.ID), decErr)
		}
		cfg.SarvamAPIKey = &key
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
