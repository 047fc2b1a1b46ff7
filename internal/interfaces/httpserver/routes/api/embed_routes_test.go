package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/utils/platformerrors"
)

// mockSessionService is a func-field implementation of session.Service.
type mockSessionService struct {
	admitFn func(ctx context.Context, params session.AdmitParams) (*session.Admission, error)
	endFn   func(ctx context.Context, sessionID string, params session.EndParams) (*session.Session, error)
}

func (m *mockSessionService) Admit(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
	if m.admitFn != nil {
		return m.admitFn(ctx, params)
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound, "Agent not found or inactive", nil)
}

func (m *mockSessionService) End(ctx context.Context, sessionID string, params session.EndParams) (*session.Session, error) {
	if m.endFn != nil {
		return m.endFn(ctx, sessionID, params)
	}
	return nil, session.ErrSessionNotFound
}

func (m *mockSessionService) Get(ctx context.Context, sessionID, userID string) (*session.Session, error) {
	return nil, session.ErrSessionNotFound
}

func (m *mockSessionService) ListByAgent(ctx context.Context, agentID, userID string) ([]session.Session, error) {
	return nil, nil
}

func (m *mockSessionService) Stats(ctx context.Context, userID string) (*session.Stats, error) {
	return &session.Stats{}, nil
}

func embedRouter(svc session.Service, ratePerMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	RegisterEmbedRoutes(api, handlers.NewSessionHandler(svc), &config.Config{
		EmbedRatePerMinute: ratePerMinute,
	})
	return r
}

func postEmbedToken(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/embed/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestEmbedToken_Success(t *testing.T) {
	svc := &mockSessionService{
		admitFn: func(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
			if params.EmbedToken != "tok-1" {
				t.Errorf("EmbedToken = %q, want tok-1", params.EmbedToken)
			}
			return &session.Admission{
				ServerURL:      "wss://livekit.example.com",
				Credential:     "jwt-credential",
				RoomName:       "agent-a1-s1",
				SessionID:      "s1",
				WelcomeMessage: "Hello!",
				AgentName:      "support-bot-abc",
			}, nil
		},
	}
	r := embedRouter(svc, 100)

	rec := postEmbedToken(r, `{"embed_token":"tok-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	// The widget contract uses camelCase field names.
	for _, field := range []string{"livekitUrl", "livekitToken", "roomName", "sessionId", "welcomeMessage", "agentName"} {
		if _, ok := body[field]; !ok {
			t.Errorf("response missing field %q: %s", field, rec.Body.String())
		}
	}
	if body["livekitToken"] != "jwt-credential" {
		t.Errorf("livekitToken = %v, want jwt-credential", body["livekitToken"])
	}
}

func TestEmbedToken_MissingToken(t *testing.T) {
	r := embedRouter(&mockSessionService{}, 100)

	for _, body := range []string{`{}`, `{"embed_token":""}`, `not json`} {
		rec := postEmbedToken(r, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q status = %d, want 400", body, rec.Code)
		}
	}
}

func TestEmbedToken_UnknownToken(t *testing.T) {
	r := embedRouter(&mockSessionService{}, 100)

	rec := postEmbedToken(r, `{"embed_token":"tok-unknown"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not the error envelope: %v", err)
	}
	if body.Error.Type != "not_found_error" {
		t.Errorf("error type = %q, want not_found_error", body.Error.Type)
	}
}

func TestEmbedToken_QuotaExceeded(t *testing.T) {
	svc := &mockSessionService{
		admitFn: func(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeQuotaExceeded,
				"Concurrent session limit reached for your plan (pro: max 20 sessions). Upgrade to increase your limit.", nil)
		},
	}
	r := embedRouter(svc, 100)

	rec := postEmbedToken(r, `{"embed_token":"tok-1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "quota_exceeded_error") {
		t.Errorf("body = %s, want quota_exceeded_error type", rec.Body.String())
	}
}

func TestEmbedToken_OriginForwarded(t *testing.T) {
	var gotOrigin string
	svc := &mockSessionService{
		admitFn: func(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
			gotOrigin = params.Origin
			return &session.Admission{SessionID: "s1"}, nil
		},
	}
	r := embedRouter(svc, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/embed/token", strings.NewReader(`{"embed_token":"tok-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotOrigin != "https://example.com" {
		t.Errorf("forwarded origin = %q, want https://example.com", gotOrigin)
	}
}

func TestEmbedToken_RateLimited(t *testing.T) {
	svc := &mockSessionService{
		admitFn: func(ctx context.Context, params session.AdmitParams) (*session.Admission, error) {
			return &session.Admission{SessionID: "s1"}, nil
		},
	}
	r := embedRouter(svc, 2)

	for i := 0; i < 2; i++ {
		if rec := postEmbedToken(r, `{"embed_token":"tok-1"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := postEmbedToken(r, `{"embed_token":"tok-1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}
}
