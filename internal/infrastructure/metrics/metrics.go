// Package metrics provides Prometheus metrics for the voiceagent API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsTotal tracks admission outcomes by result.
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voiceagent_admissions_total",
			Help: "Total embed admission attempts by result",
		},
		[]string{"result"},
	)

	// SessionsEnded tracks worker close callbacks.
	SessionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_sessions_ended_total",
			Help: "Total sessions closed by the worker callback",
		},
	)

	// RoomProvisionErrors tracks failed LiveKit room creations.
	RoomProvisionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_room_provision_errors_total",
			Help: "Total failed LiveKit room provisioning calls",
		},
	)

	// DispatchFailures tracks best-effort agent dispatches that failed.
	DispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_agent_dispatch_failures_total",
			Help: "Total failed agent worker dispatch attempts",
		},
	)

	// PreviewAgentsPurged tracks preview agents removed by the sweep.
	PreviewAgentsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_preview_agents_purged_total",
			Help: "Total expired preview agents removed by the sweep",
		},
	)

	// ActiveRooms reports live LiveKit rooms at the last sweep sample.
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voiceagent_active_rooms",
			Help: "LiveKit rooms alive at the last occupancy sample",
		},
	)

	// ActiveRoomParticipants reports participants across those rooms.
	ActiveRoomParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voiceagent_active_room_participants",
			Help: "Participants across live rooms at the last occupancy sample",
		},
	)

	// TokenGenerationDuration tracks credential mint time.
	TokenGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voiceagent_token_generation_duration_seconds",
			Help:    "Duration of LiveKit token generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// HTTPRequestDuration tracks request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voiceagent_http_request_duration_seconds",
			Help:    "HTTP request duration by method, route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAdmission records one admission attempt outcome.
func RecordAdmission(result string) {
	AdmissionsTotal.WithLabelValues(result).Inc()
}

// RecordSessionEnded records one worker close callback.
func RecordSessionEnded() {
	SessionsEnded.Inc()
}

// RecordRoomProvisionError records a failed room creation.
func RecordRoomProvisionError() {
	RoomProvisionErrors.Inc()
}

// RecordDispatchFailure records a failed agent dispatch.
func RecordDispatchFailure() {
	DispatchFailures.Inc()
}

// RecordPreviewPurge records preview agents removed by one sweep pass.
func RecordPreviewPurge(n int64) {
	PreviewAgentsPurged.Add(float64(n))
}

// SetRoomOccupancy records one room occupancy sample.
func SetRoomOccupancy(rooms, participants int) {
	ActiveRooms.Set(float64(rooms))
	ActiveRoomParticipants.Set(float64(participants))
}
