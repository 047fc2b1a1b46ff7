// Package voiceagentserver implements the control plane for embeddable
// voice AI agents.
//
// The service provides:
//   - Agent management with encrypted provider API keys
//   - Embed token admission with per-plan concurrency quotas
//   - LiveKit room provisioning and conversation worker dispatch
//   - Session history, transcripts and dashboard statistics
//   - Short-lived preview agents with background cleanup
package voiceagentserver
