package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/domain/user"
	"voiceagent-server/internal/utils/platformerrors"
)

// mockStore is a func-field implementation of Store for testing.
type mockStore struct {
	createFn      func(ctx context.Context, s *Session) error
	getFn         func(ctx context.Context, id string) (*Session, error)
	countActiveFn func(ctx context.Context, agentID string) (int64, error)
	listFn        func(ctx context.Context, agentID string, limit int) ([]Session, error)
	endFn         func(ctx context.Context, id string, endedAt time.Time, durationSec *int, transcript Transcript) (*Session, error)
	statsFn       func(ctx context.Context, agentIDs []string) (*Stats, error)
}

func (m *mockStore) Create(ctx context.Context, s *Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, ErrSessionNotFound
}

func (m *mockStore) CountActive(ctx context.Context, agentID string) (int64, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, agentID)
	}
	return 0, nil
}

func (m *mockStore) ListByAgent(ctx context.Context, agentID string, limit int) ([]Session, error) {
	if m.listFn != nil {
		return m.listFn(ctx, agentID, limit)
	}
	return nil, nil
}

func (m *mockStore) End(ctx context.Context, id string, endedAt time.Time, durationSec *int, transcript Transcript) (*Session, error) {
	if m.endFn != nil {
		return m.endFn(ctx, id, endedAt, durationSec, transcript)
	}
	return nil, ErrSessionNotFound
}

func (m *mockStore) Stats(ctx context.Context, agentIDs []string) (*Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, agentIDs)
	}
	return &Stats{}, nil
}

// mockAgentStore is a func-field implementation of agent.Store for testing.
type mockAgentStore struct {
	getByEmbedTokenFn func(ctx context.Context, token string) (*agent.Agent, error)
	getOwnedFn        func(ctx context.Context, id, userID string) (*agent.Agent, error)
	listByOwnerFn     func(ctx context.Context, userID string) ([]agent.Listing, error)
}

func (m *mockAgentStore) Create(ctx context.Context, a *agent.Agent) error { return nil }

func (m *mockAgentStore) GetByID(ctx context.Context, id string) (*agent.Agent, error) {
	return nil, agent.ErrAgentNotFound
}

func (m *mockAgentStore) GetOwned(ctx context.Context, id, userID string) (*agent.Agent, error) {
	if m.getOwnedFn != nil {
		return m.getOwnedFn(ctx, id, userID)
	}
	return nil, agent.ErrAgentNotFound
}

func (m *mockAgentStore) GetByEmbedToken(ctx context.Context, token string) (*agent.Agent, error) {
	if m.getByEmbedTokenFn != nil {
		return m.getByEmbedTokenFn(ctx, token)
	}
	return nil, agent.ErrAgentNotFound
}

func (m *mockAgentStore) ListByOwner(ctx context.Context, userID string) ([]agent.Listing, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAgentStore) Update(ctx context.Context, a *agent.Agent) error { return nil }

func (m *mockAgentStore) DeleteExpiredPreviews(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// mockUserStore is a func-field implementation of user.Store for testing.
type mockUserStore struct {
	getByIDFn func(ctx context.Context, id string) (*user.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, u *user.User) error { return nil }

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

// mockRooms records provisioning calls.
type mockRooms struct {
	createErr      error
	dispatchResult DispatchResult

	createdRoom      string
	createdMetadata  string
	maxDuration      int
	dispatchedRoom   string
	dispatchedPool   string
	dispatchAttempts int
}

func (m *mockRooms) CreateRoom(ctx context.Context, name, metadata string, maxDurationSec int) error {
	m.createdRoom = name
	m.createdMetadata = metadata
	m.maxDuration = maxDurationSec
	return m.createErr
}

func (m *mockRooms) DispatchAgent(ctx context.Context, roomName, agentName, metadata string) DispatchResult {
	m.dispatchAttempts++
	m.dispatchedRoom = roomName
	m.dispatchedPool = agentName
	return m.dispatchResult
}

// mockCreds mints a fixed credential.
type mockCreds struct {
	err error
	ttl time.Duration
}

func (m *mockCreds) Generate(room, identity string, ttl time.Duration) (string, error) {
	m.ttl = ttl
	if m.err != nil {
		return "", m.err
	}
	return "test-credential", nil
}

func testAgent() *agent.Agent {
	return &agent.Agent{
		ID:                 "agent-id-1",
		UserID:             "user-id-1",
		Name:               "Support Bot",
		Slug:               "support-bot-abc123",
		WelcomeMessage:     "Hello! How can I help you today?",
		MaxCallDurationSec: 300,
		IsActive:           true,
	}
}

type testDeps struct {
	store  *mockStore
	agents *mockAgentStore
	users  *mockUserStore
	rooms  *mockRooms
	creds  *mockCreds
}

func newTestService(deps testDeps, enforceOrigin bool) Service {
	if deps.store == nil {
		deps.store = &mockStore{}
	}
	if deps.agents == nil {
		deps.agents = &mockAgentStore{}
	}
	if deps.users == nil {
		deps.users = &mockUserStore{}
	}
	if deps.rooms == nil {
		deps.rooms = &mockRooms{}
	}
	if deps.creds == nil {
		deps.creds = &mockCreds{}
	}
	return NewService(
		deps.store,
		deps.agents,
		deps.users,
		NewQuotaEvaluator(deps.store),
		deps.rooms,
		deps.creds,
		"wss://livekit.example.com",
		"my-agent",
		enforceOrigin,
		60*time.Second,
		zerolog.Nop(),
	)
}

func errorType(t *testing.T, err error) platformerrors.ErrorType {
	t.Helper()
	var pe *platformerrors.PlatformError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a PlatformError", err)
	}
	return pe.Type
}

func TestAdmit_Success(t *testing.T) {
	ag := testAgent()
	var created *Session
	store := &mockStore{
		createFn: func(ctx context.Context, s *Session) error {
			created = s
			return nil
		},
	}
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			if token != "emb_valid" {
				return nil, agent.ErrAgentNotFound
			}
			return ag, nil
		},
	}
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: id, Plan: user.PlanFree}, nil
		},
	}
	rooms := &mockRooms{}
	creds := &mockCreds{}

	svc := newTestService(testDeps{store: store, agents: agents, users: users, rooms: rooms, creds: creds}, false)

	adm, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"})
	if err != nil {
		t.Fatalf("Admit() error = %v", err)
	}

	wantRoom := fmt.Sprintf("agent-%s-%s", ag.ID, adm.SessionID)
	if adm.RoomName != wantRoom {
		t.Errorf("RoomName = %q, want %q", adm.RoomName, wantRoom)
	}
	if rooms.createdRoom != wantRoom {
		t.Errorf("provisioned room %q, want %q", rooms.createdRoom, wantRoom)
	}
	if rooms.maxDuration != ag.MaxCallDurationSec {
		t.Errorf("room max duration = %d, want %d", rooms.maxDuration, ag.MaxCallDurationSec)
	}
	if rooms.dispatchedPool != "my-agent" {
		t.Errorf("dispatched pool %q, want %q", rooms.dispatchedPool, "my-agent")
	}

	var meta roomMetadata
	if err := json.Unmarshal([]byte(rooms.createdMetadata), &meta); err != nil {
		t.Fatalf("room metadata is not valid JSON: %v", err)
	}
	if meta.AgentID != ag.ID || meta.SessionID != adm.SessionID {
		t.Errorf("room metadata = %+v, want agent %q session %q", meta, ag.ID, adm.SessionID)
	}

	if adm.Credential != "test-credential" {
		t.Errorf("Credential = %q, want %q", adm.Credential, "test-credential")
	}
	if adm.ServerURL != "wss://livekit.example.com" {
		t.Errorf("ServerURL = %q", adm.ServerURL)
	}
	if adm.WelcomeMessage != ag.WelcomeMessage {
		t.Errorf("WelcomeMessage = %q, want %q", adm.WelcomeMessage, ag.WelcomeMessage)
	}
	if adm.AgentName != ag.Slug {
		t.Errorf("AgentName = %q, want slug %q", adm.AgentName, ag.Slug)
	}

	// Credential lives as long as the call cap plus the join slack.
	wantTTL := time.Duration(ag.MaxCallDurationSec)*time.Second + 60*time.Second
	if creds.ttl != wantTTL {
		t.Errorf("credential TTL = %v, want %v", creds.ttl, wantTTL)
	}

	if created == nil {
		t.Fatal("session row was not written")
	}
	if created.ID != adm.SessionID {
		t.Errorf("stored session ID = %q, want %q", created.ID, adm.SessionID)
	}
	if created.AgentID == nil || *created.AgentID != ag.ID {
		t.Errorf("stored AgentID = %v, want %q", created.AgentID, ag.ID)
	}
	if !strings.HasPrefix(created.VisitorIdentity, "visitor-") {
		t.Errorf("VisitorIdentity = %q, want visitor- prefix", created.VisitorIdentity)
	}
	if created.EndedAt != nil {
		t.Error("new session already has an end timestamp")
	}
}

func TestAdmit_EmptyToken(t *testing.T) {
	svc := newTestService(testDeps{}, false)

	_, err := svc.Admit(context.Background(), AdmitParams{})
	if err == nil {
		t.Fatal("Admit() with empty token succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeValidation {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeValidation)
	}
}

func TestAdmit_UnknownToken(t *testing.T) {
	svc := newTestService(testDeps{}, false)

	_, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_unknown"})
	if err == nil {
		t.Fatal("Admit() with unknown token succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeNotFound {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeNotFound)
	}
	if !strings.Contains(err.Error(), "Agent not found or inactive") {
		t.Errorf("error = %v, want agent-not-found message", err)
	}
}

func TestAdmit_QuotaExceeded(t *testing.T) {
	ag := testAgent()
	store := &mockStore{
		countActiveFn: func(ctx context.Context, agentID string) (int64, error) {
			return 20, nil
		},
	}
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			return ag, nil
		},
	}
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: id, Plan: user.PlanPro}, nil
		},
	}

	svc := newTestService(testDeps{store: store, agents: agents, users: users}, false)

	_, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"})
	if err == nil {
		t.Fatal("Admit() over quota succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeQuotaExceeded {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeQuotaExceeded)
	}
	if !strings.Contains(err.Error(), "pro: max 20 sessions") {
		t.Errorf("error = %v, want plan and limit in message", err)
	}
}

func TestAdmit_MissingOwnerFallsBackToFreePlan(t *testing.T) {
	ag := testAgent()
	store := &mockStore{
		// 20 active would exceed pro but stays well under the free ceiling.
		countActiveFn: func(ctx context.Context, agentID string) (int64, error) {
			return 20, nil
		},
	}
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			return ag, nil
		},
	}

	svc := newTestService(testDeps{store: store, agents: agents}, false)

	if _, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"}); err != nil {
		t.Fatalf("Admit() error = %v, want free-tier fallback to admit", err)
	}
}

func TestAdmit_RoomProvisionFailure(t *testing.T) {
	ag := testAgent()
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			return ag, nil
		},
	}
	rooms := &mockRooms{createErr: errors.New("upstream unavailable")}

	svc := newTestService(testDeps{agents: agents, rooms: rooms}, false)

	_, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"})
	if err == nil {
		t.Fatal("Admit() with failed room provisioning succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeExternal {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeExternal)
	}
}

func TestAdmit_DispatchFailureDoesNotAbort(t *testing.T) {
	ag := testAgent()
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			return ag, nil
		},
	}
	rooms := &mockRooms{
		dispatchResult: DispatchResult{Status: DispatchFailed, Err: errors.New("no workers")},
	}

	svc := newTestService(testDeps{agents: agents, rooms: rooms}, false)

	adm, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"})
	if err != nil {
		t.Fatalf("Admit() error = %v, want dispatch failure to be swallowed", err)
	}
	if rooms.dispatchAttempts != 1 {
		t.Errorf("dispatch attempts = %d, want 1", rooms.dispatchAttempts)
	}
	if adm.SessionID == "" {
		t.Error("admission has no session ID")
	}
}

func TestAdmit_CredentialFailure(t *testing.T) {
	ag := testAgent()
	agents := &mockAgentStore{
		getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
			return ag, nil
		},
	}
	creds := &mockCreds{err: errors.New("missing API key")}

	svc := newTestService(testDeps{agents: agents, creds: creds}, false)

	_, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid"})
	if err == nil {
		t.Fatal("Admit() with credential failure succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeConfiguration {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeConfiguration)
	}
}

func TestAdmit_OriginEnforcement(t *testing.T) {
	tests := []struct {
		name           string
		enforce        bool
		origin         string
		allowedDomains []string
		wantErr        string
	}{
		{
			name:           "enforcement off ignores origin",
			enforce:        false,
			origin:         "https://evil.example.com",
			allowedDomains: []string{"example.com"},
		},
		{
			name:           "absent origin header passes",
			enforce:        true,
			origin:         "",
			allowedDomains: []string{"example.com"},
		},
		{
			name:    "empty allow-list passes any origin",
			enforce: true,
			origin:  "https://anywhere.example.net",
		},
		{
			name:           "allowed domain passes",
			enforce:        true,
			origin:         "https://example.com",
			allowedDomains: []string{"example.com"},
		},
		{
			name:           "www prefix is stripped from the origin",
			enforce:        true,
			origin:         "https://www.example.com",
			allowedDomains: []string{"example.com"},
		},
		{
			name:           "www prefix is stripped from the allow-list",
			enforce:        true,
			origin:         "https://example.com",
			allowedDomains: []string{"www.example.com"},
		},
		{
			name:           "unparsable origin is rejected",
			enforce:        true,
			origin:         "not a url",
			allowedDomains: []string{"example.com"},
			wantErr:        "Invalid origin header",
		},
		{
			name:           "mismatched domain is rejected",
			enforce:        true,
			origin:         "https://evil.example.net",
			allowedDomains: []string{"example.com"},
			wantErr:        "Domain not allowed for this agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := testAgent()
			ag.AllowedDomains = tt.allowedDomains
			agents := &mockAgentStore{
				getByEmbedTokenFn: func(ctx context.Context, token string) (*agent.Agent, error) {
					return ag, nil
				},
			}

			svc := newTestService(testDeps{agents: agents}, tt.enforce)

			_, err := svc.Admit(context.Background(), AdmitParams{EmbedToken: "emb_valid", Origin: tt.origin})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Admit() error = %v, want success", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Admit() succeeded, want origin rejection")
			}
			if got := errorType(t, err); got != platformerrors.ErrorTypeForbidden {
				t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeForbidden)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnd(t *testing.T) {
	duration := 42
	store := &mockStore{
		endFn: func(ctx context.Context, id string, endedAt time.Time, durationSec *int, transcript Transcript) (*Session, error) {
			if id != "sess-1" {
				return nil, ErrSessionNotFound
			}
			return &Session{
				ID:          id,
				RoomName:    "agent-a-sess-1",
				EndedAt:     &endedAt,
				DurationSec: durationSec,
				Transcript:  transcript,
			}, nil
		},
	}

	svc := newTestService(testDeps{store: store}, false)

	got, err := svc.End(context.Background(), "sess-1", EndParams{
		DurationSec: &duration,
		Transcript:  Transcript{{Role: "user", Text: "hi"}},
	})
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if got.EndedAt == nil {
		t.Error("End() did not set the end timestamp")
	}
	if got.DurationSec == nil || *got.DurationSec != duration {
		t.Errorf("DurationSec = %v, want %d", got.DurationSec, duration)
	}

	_, err = svc.End(context.Background(), "missing", EndParams{})
	if err == nil {
		t.Fatal("End() on unknown session succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeNotFound {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeNotFound)
	}
}

func TestGet_OwnershipRequired(t *testing.T) {
	agentID := "agent-id-1"
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Session, error) {
			return &Session{ID: id, AgentID: &agentID}, nil
		},
	}
	agents := &mockAgentStore{
		getOwnedFn: func(ctx context.Context, id, userID string) (*agent.Agent, error) {
			if userID == "owner" {
				return testAgent(), nil
			}
			return nil, agent.ErrAgentNotFound
		},
	}

	svc := newTestService(testDeps{store: store, agents: agents}, false)

	if _, err := svc.Get(context.Background(), "sess-1", "owner"); err != nil {
		t.Fatalf("Get() as owner error = %v", err)
	}

	_, err := svc.Get(context.Background(), "sess-1", "intruder")
	if err == nil {
		t.Fatal("Get() as non-owner succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeForbidden {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeForbidden)
	}
}

func TestGet_OrphanedSessionDenied(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id string) (*Session, error) {
			return &Session{ID: id, AgentID: nil}, nil
		},
	}

	svc := newTestService(testDeps{store: store}, false)

	_, err := svc.Get(context.Background(), "sess-1", "anyone")
	if err == nil {
		t.Fatal("Get() on agent-less session succeeded")
	}
	if got := errorType(t, err); got != platformerrors.ErrorTypeForbidden {
		t.Errorf("error type = %q, want %q", got, platformerrors.ErrorTypeForbidden)
	}
}

func TestStats(t *testing.T) {
	agents := &mockAgentStore{
		listByOwnerFn: func(ctx context.Context, userID string) ([]agent.Listing, error) {
			if userID == "empty" {
				return nil, nil
			}
			return []agent.Listing{
				{Agent: &agent.Agent{ID: "a1"}},
				{Agent: &agent.Agent{ID: "a2"}},
			}, nil
		},
	}
	store := &mockStore{
		statsFn: func(ctx context.Context, agentIDs []string) (*Stats, error) {
			if len(agentIDs) != 2 {
				t.Errorf("Stats queried %d agents, want 2", len(agentIDs))
			}
			return &Stats{TotalSessions: 7, TotalDuration: 900, ActiveSessions: 1}, nil
		},
	}

	svc := newTestService(testDeps{store: store, agents: agents}, false)

	stats, err := svc.Stats(context.Background(), "owner")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.AgentCount != 2 {
		t.Errorf("AgentCount = %d, want 2", stats.AgentCount)
	}
	if stats.TotalSessions != 7 {
		t.Errorf("TotalSessions = %d, want 7", stats.TotalSessions)
	}

	empty, err := svc.Stats(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Stats() with no agents error = %v", err)
	}
	if empty.TotalSessions != 0 || empty.AgentCount != 0 {
		t.Errorf("Stats() with no agents = %+v, want zero values", empty)
	}
}
