package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/domain/user"
	"voiceagent-server/internal/utils/platformerrors"
)

// DispatchStatus is the outcome of a best-effort worker dispatch.
type DispatchStatus int

const (
	DispatchOK DispatchStatus = iota
	DispatchFailed
	DispatchSkipped
)

// DispatchResult carries the dispatch outcome. It is inspected only for
// logging; dispatch failure never aborts admission, since a worker can
// still self-attach to the room through its own discovery.
type DispatchResult struct {
	Status DispatchStatus
	Err    error
}

// RoomProvisioner abstracts the media platform's control surface. CreateRoom
// fails closed; DispatchAgent fails open and reports its outcome as a result
// value instead of an error.
type RoomProvisioner interface {
	CreateRoom(ctx context.Context, name, metadata string, maxDurationSec int) error
	DispatchAgent(ctx context.Context, roomName, agentName, metadata string) DispatchResult
}

// CredentialIssuer mints a signed join token scoped to one room and one
// identity. It holds no session state.
type CredentialIssuer interface {
	Generate(room, identity string, ttl time.Duration) (string, error)
}

// AdmitParams is the input to the public admission endpoint.
type AdmitParams struct {
	EmbedToken string
	// Origin is the request's Origin header, empty when the header is absent.
	Origin string
}

// Admission is everything the embed widget needs to join its session.
type Admission struct {
	ServerURL      string
	Credential     string
	RoomName       string
	SessionID      string
	WelcomeMessage string
	AgentName      string
}

// EndParams is the worker's close payload. A nil DurationSec stores null;
// a nil Transcript preserves whatever is already stored.
type EndParams struct {
	DurationSec *int
	Transcript  Transcript
}

// roomMetadata is serialized into the room so the worker can recover full
// context from nothing but the join event.
type roomMetadata struct {
	AgentID   string `json:"agentId"`
	SessionID string `json:"sessionId"`
}

// Service runs the session lifecycle: public admission, worker close
// callbacks, and owner-scoped browsing.
type Service interface {
	Admit(ctx context.Context, params AdmitParams) (*Admission, error)
	End(ctx context.Context, sessionID string, params EndParams) (*Session, error)
	Get(ctx context.Context, sessionID, userID string) (*Session, error)
	ListByAgent(ctx context.Context, agentID, userID string) ([]Session, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
}

type service struct {
	store  Store
	agents agent.Store
	users  user.Store
	quota  *QuotaEvaluator
	rooms  RoomProvisioner
	creds  CredentialIssuer

	serverURL     string
	agentPool     string
	enforceOrigin bool
	ttlSlack      time.Duration

	log zerolog.Logger
}

// ListLimit caps session history responses.
const ListLimit = 100

func NewService(
	store Store,
	agents agent.Store,
	users user.Store,
	quota *QuotaEvaluator,
	rooms RoomProvisioner,
	creds CredentialIssuer,
	serverURL string,
	agentPool string,
	enforceOrigin bool,
	ttlSlack time.Duration,
	log zerolog.Logger,
) Service {
	return &service{
		store:         store,
		agents:        agents,
		users:         users,
		quota:         quota,
		rooms:         rooms,
		creds:         creds,
		serverURL:     serverURL,
		agentPool:     agentPool,
		enforceOrigin: enforceOrigin,
		ttlSlack:      ttlSlack,
		log:           log.With().Str("component", "session_service").Logger(),
	}
}

// Admit runs the admission gates in order, each a hard stop on failure:
// token resolution, origin validation, quota, room provisioning plus
// best-effort dispatch, credential issuance, ledger insert. The quota check
// and the insert are separate round-trips, so concurrent bursts can briefly
// overshoot the plan ceiling.
func (s *service) Admit(ctx context.Context, params AdmitParams) (*Admission, error) {
	if params.EmbedToken == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "embed_token is required", nil)
	}

	// Gate 1: resolve the bearer capability. Inactive agents look absent.
	ag, err := s.agents.GetByEmbedToken(ctx, params.EmbedToken)
	if err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Agent not found or inactive", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to resolve embed token", err)
	}

	// Gate 2: origin allow-list, enforced only in strict deployments.
	if err := s.checkOrigin(ctx, ag, params.Origin); err != nil {
		return nil, err
	}

	// Gate 3: concurrency quota under the owner's plan. A missing owner row
	// falls back to the free tier.
	plan := user.PlanFree
	if owner, ownerErr := s.users.GetByID(ctx, ag.UserID); ownerErr == nil {
		plan = owner.Plan
	} else if !errors.Is(ownerErr, user.ErrUserNotFound) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to look up agent owner", ownerErr)
	}

	decision, err := s.quota.Evaluate(ctx, ag.ID, plan)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to evaluate session quota", err)
	}
	if !decision.Allowed {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeQuotaExceeded, decision.Reason, nil)
	}

	// Gate 4: provision the room. The name composes agent and session ids so
	// collisions are structurally impossible; the metadata blob is the only
	// channel through which the worker learns its context.
	sessionID := uuid.NewString()
	roomName := fmt.Sprintf("agent-%s-%s", ag.ID, sessionID)
	visitorIdentity := "visitor-" + uuid.NewString()

	metaBytes, err := json.Marshal(roomMetadata{AgentID: ag.ID, SessionID: sessionID})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to encode room metadata", err)
	}
	metadata := string(metaBytes)

	if err := s.rooms.CreateRoom(ctx, roomName, metadata, ag.MaxCallDurationSec); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, "failed to provision session room", err)
	}

	// Dispatch is fire-and-forget: the room exists either way and workers
	// have their own discovery path.
	if result := s.rooms.DispatchAgent(ctx, roomName, s.agentPool, metadata); result.Status == DispatchFailed {
		s.log.Warn().
			Err(result.Err).
			Str("room", roomName).
			Str("agent_pool", s.agentPool).
			Msg("agent dispatch failed, continuing without explicit dispatch")
	}

	// Gate 5: mint the visitor credential, valid for the call cap plus slack
	// for the join handshake.
	ttl := time.Duration(ag.MaxCallDurationSec)*time.Second + s.ttlSlack
	credential, err := s.creds.Generate(roomName, visitorIdentity, ttl)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeConfiguration, "failed to issue session credential", err)
	}

	// Gate 6: durable record. Written after provisioning so a crash here can
	// orphan a room, which the empty timeout reclaims.
	agentID := ag.ID
	sess := &Session{
		ID:              sessionID,
		AgentID:         &agentID,
		RoomName:        roomName,
		VisitorIdentity: visitorIdentity,
		StartedAt:       time.Now().UTC(),
		Transcript:      Transcript{},
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to record session", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("agent_id", ag.ID).
		Str("room", roomName).
		Msg("session admitted")

	return &Admission{
		ServerURL:      s.serverURL,
		Credential:     credential,
		RoomName:       roomName,
		SessionID:      sessionID,
		WelcomeMessage: ag.WelcomeMessage,
		AgentName:      ag.Slug,
	}, nil
}

// checkOrigin enforces the agent's allowed-domain list. An absent Origin
// header passes, as does an empty allow-list: agents without a configured
// domain are open by default.
func (s *service) checkOrigin(ctx context.Context, ag *agent.Agent, origin string) error {
	if !s.enforceOrigin || origin == "" || len(ag.AllowedDomains) == 0 {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "Invalid origin header", err)
	}

	hostname := strings.TrimPrefix(parsed.Hostname(), "www.")
	for _, d := range ag.AllowedDomains {
		if strings.TrimPrefix(d, "www.") == hostname {
			return nil
		}
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeForbidden, "Domain not allowed for this agent", nil)
}

// End records the worker's close callback. It tolerates at most one call
// but does not guard against a second one: a repeat close overwrites the
// end timestamp, duration and transcript.
func (s *service) End(ctx context.Context, sessionID string, params EndParams) (*Session, error) {
	updated, err := s.store.End(ctx, sessionID, time.Now().UTC(), params.DurationSec, params.Transcript)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Session not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to end session", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Msg("session ended")
	return updated, nil
}

// Get returns a session only if its agent belongs to userID.
func (s *service) Get(ctx context.Context, sessionID, userID string) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Session not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to get session", err)
	}

	if sess.AgentID == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "Access denied", nil)
	}
	if _, err := s.agents.GetOwned(ctx, *sess.AgentID, userID); err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeForbidden, "Access denied", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to verify session ownership", err)
	}
	return sess, nil
}

// ListByAgent returns the agent's recent sessions, owner-scoped.
func (s *service) ListByAgent(ctx context.Context, agentID, userID string) ([]Session, error) {
	if _, err := s.agents.GetOwned(ctx, agentID, userID); err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "Agent not found", err)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to verify agent ownership", err)
	}

	sessions, err := s.store.ListByAgent(ctx, agentID, ListLimit)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to list sessions", err)
	}
	return sessions, nil
}

// Stats aggregates session figures across all of the user's non-preview
// agents.
func (s *service) Stats(ctx context.Context, userID string) (*Stats, error) {
	listings, err := s.agents.ListByOwner(ctx, userID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to list agents", err)
	}
	if len(listings) == 0 {
		return &Stats{}, nil
	}

	agentIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		agentIDs = append(agentIDs, l.ID)
	}

	stats, err := s.store.Stats(ctx, agentIDs)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to aggregate session stats", err)
	}
	stats.AgentCount = len(agentIDs)
	return stats, nil
}
