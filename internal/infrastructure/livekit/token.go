package livekit

import (
	"time"

	"github.com/livekit/protocol/auth"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/metrics"
)

// TokenGenerator mints LiveKit access tokens for visitor participants. It
// satisfies session.CredentialIssuer.
type TokenGenerator struct {
	apiKey    string
	apiSecret string
}

var _ session.CredentialIssuer = (*TokenGenerator)(nil)

// NewTokenGenerator creates a new token generator.
func NewTokenGenerator(cfg *config.Config) *TokenGenerator {
	return &TokenGenerator{
		apiKey:    cfg.LiveKitAPIKey,
		apiSecret: cfg.LiveKitAPISecret,
	}
}

// Generate creates an access token granting join, publish and subscribe
// rights scoped to the given room, expiring after ttl.
func (g *TokenGenerator) Generate(room, identity string, ttl time.Duration) (string, error) {
	if g.apiKey == "" || g.apiSecret == "" {
		return "", ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		metrics.TokenGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	canPublish := true
	canSubscribe := true

	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at := auth.NewAccessToken(g.apiKey, g.apiSecret)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(ttl)

	return at.ToJWT()
}
