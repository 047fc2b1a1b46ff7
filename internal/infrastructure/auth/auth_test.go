package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/user"
)

func newTestManager(accessTTL time.Duration) *TokenManager {
	return NewTokenManager(&config.Config{
		JWTSecret:     "test-secret",
		JWTAccessTTL:  accessTTL,
		JWTRefreshTTL: 30 * 24 * time.Hour,
	}, zerolog.Nop())
}

func testUser() *user.User {
	return &user.User{ID: "user-1", Email: "a@example.com", Plan: user.PlanPro}
}

func TestIssueAccessAndValidate(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("Email = %q, want a@example.com", claims.Email)
	}
	if claims.Plan != "pro" {
		t.Errorf("Plan = %q, want pro", claims.Plan)
	}
	if claims.Type == "refresh" {
		t.Error("access token is marked as refresh")
	}
}

func TestIssueRefresh(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Type != "refresh" {
		t.Errorf("Type = %q, want refresh", claims.Type)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
}

func TestValidate_Rejections(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewTokenManager(&config.Config{
		JWTSecret:    "different-secret",
		JWTAccessTTL: time.Hour,
	}, zerolog.Nop())

	foreign, err := other.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	expired, err := newTestManager(-time.Minute).IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong signing key", token: foreign},
		{name: "expired", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); err == nil {
				t.Errorf("Validate(%s) succeeded, want rejection", tt.name)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager(time.Hour)

	access, err := m.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	refresh, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	r := gin.New()
	r.GET("/me", m.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserIDKey)})
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid access token", authHeader: "Bearer " + access, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", authHeader: "Bearer junk", wantStatus: http.StatusUnauthorized},
		{name: "refresh token rejected", authHeader: "Bearer " + refresh, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
