package responses

import (
	"fmt"

	"voiceagent-server/internal/domain/session"
)

// DashboardStatsResponse aggregates a user's session figures.
type DashboardStatsResponse struct {
	TotalSessions        int64  `json:"totalSessions"`
	TotalTalkTime        string `json:"totalTalkTime"`
	TotalTalkTimeSeconds int64  `json:"totalTalkTimeSeconds"`
	AgentCount           int    `json:"agentCount"`
	ActiveSessions       int64  `json:"activeSessions"`
}

// NewDashboardStatsResponse converts aggregate stats to the dashboard view.
func NewDashboardStatsResponse(stats *session.Stats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalSessions:        stats.TotalSessions,
		TotalTalkTime:        formatTalkTime(stats.TotalDuration),
		TotalTalkTimeSeconds: stats.TotalDuration,
		AgentCount:           stats.AgentCount,
		ActiveSessions:       stats.ActiveSessions,
	}
}

// formatTalkTime renders seconds as "2h 5m", "12m" or "42s".
func formatTalkTime(totalSec int64) string {
	if totalSec <= 0 {
		return "0m"
	}
	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	seconds := totalSec % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
