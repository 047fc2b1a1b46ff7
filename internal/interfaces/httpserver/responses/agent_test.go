package responses

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"voiceagent-server/internal/domain/agent"
)

func TestNewCreateAgentResponse(t *testing.T) {
	a := &agent.Agent{
		ID:         "agent-1",
		Slug:       "support-bot-abc123",
		EmbedToken: "tok-1",
	}

	resp := NewCreateAgentResponse(a, "https://widget.example.com")
	want := "https://widget.example.com/embed/support-bot-abc123?token=tok-1"
	if resp.EmbedURL != want {
		t.Errorf("EmbedURL = %q, want %q", resp.EmbedURL, want)
	}
	if resp.DeleteAfter != "" || resp.ExpiresIn != "" {
		t.Error("non-preview agent has expiry fields")
	}
}

func TestNewCreateAgentResponse_Preview(t *testing.T) {
	deleteAfter := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &agent.Agent{
		ID:          "agent-1",
		Slug:        "preview-support-bot-abc123",
		EmbedToken:  "tok-1",
		IsPreview:   true,
		DeleteAfter: &deleteAfter,
	}

	resp := NewCreateAgentResponse(a, "https://widget.example.com")
	if resp.DeleteAfter != "2026-03-01T12:00:00Z" {
		t.Errorf("DeleteAfter = %q, want RFC3339 timestamp", resp.DeleteAfter)
	}
	if resp.ExpiresIn != "5 minutes" {
		t.Errorf("ExpiresIn = %q, want 5 minutes", resp.ExpiresIn)
	}
}

func TestAgentResponse_OmitsEncryptedKeys(t *testing.T) {
	enc := "iv:tag:ciphertext"
	a := &agent.Agent{
		ID:              "agent-1",
		Name:            "Agent",
		LLMAPIKeyEnc:    &enc,
		SarvamAPIKeyEnc: &enc,
	}

	payload, err := json.Marshal(NewAgentResponse(a))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(payload), "ciphertext") {
		t.Errorf("agent response leaks encrypted keys: %s", payload)
	}
	if strings.Contains(string(payload), "api_key") {
		t.Errorf("agent response exposes api key fields: %s", payload)
	}
}
