package livekit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/infrastructure/metrics"
)

// ErrNotConfigured is returned when the LiveKit host or API credentials are
// missing from the environment.
var ErrNotConfigured = errors.New("livekit credentials not configured")

// visitor plus the agent worker, with headroom
const roomMaxParticipants = 5

// RoomClient provisions LiveKit rooms and dispatches agent workers into
// them. It satisfies session.RoomProvisioner.
type RoomClient struct {
	rooms    *lksdk.RoomServiceClient
	dispatch *lksdk.AgentDispatchClient

	// emptyTimeout destroys a room nobody joined, bounding leakage from
	// abandoned provisioning.
	emptyTimeout time.Duration

	log zerolog.Logger
}

var _ session.RoomProvisioner = (*RoomClient)(nil)

// NewRoomClient creates a new LiveKit room client. Returns ErrNotConfigured
// when the host or API credentials are absent so startup fails loudly
// instead of at the first admission.
func NewRoomClient(cfg *config.Config, log zerolog.Logger) (*RoomClient, error) {
	if cfg.LiveKitHost == "" || cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" {
		return nil, ErrNotConfigured
	}
	dispatchClient := lksdk.NewAgentDispatchServiceClient(cfg.LiveKitHost, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	return &RoomClient{
		rooms:        lksdk.NewRoomServiceClient(cfg.LiveKitHost, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		dispatch:     dispatchClient,
		emptyTimeout: cfg.RoomEmptyTimeout,
		log:          log.With().Str("component", "livekit_room_client").Logger(),
	}, nil
}

// CreateRoom provisions a session-scoped room. The metadata blob is read by
// the agent worker on room join; maxDurationSec is advisory only, the room's
// hard cap is enforced by the visitor credential TTL.
func (c *RoomClient) CreateRoom(ctx context.Context, name, metadata string, maxDurationSec int) error {
	_, err := c.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		Metadata:        metadata,
		EmptyTimeout:    uint32(c.emptyTimeout.Seconds()),
		MaxParticipants: roomMaxParticipants,
	})
	if err != nil {
		metrics.RecordRoomProvisionError()
		return fmt.Errorf("create room %s: %w", name, err)
	}
	return nil
}

// DispatchAgent asks LiveKit to send a worker from the named pool into the
// room. Failures are reported as a result value, never an error: the room
// exists regardless and workers can self-attach.
func (c *RoomClient) DispatchAgent(ctx context.Context, roomName, agentName, metadata string) session.DispatchResult {
	_, err := c.dispatch.CreateDispatch(ctx, &livekit.CreateAgentDispatchRequest{
		Room:      roomName,
		AgentName: agentName,
		Metadata:  metadata,
	})
	if err != nil {
		metrics.RecordDispatchFailure()
		c.log.Warn().
			Err(err).
			Str("room", roomName).
			Str("agent_name", agentName).
			Msg("agent dispatch failed")
		return session.DispatchResult{Status: session.DispatchFailed, Err: err}
	}
	return session.DispatchResult{Status: session.DispatchOK}
}

// ListActiveRooms returns the number of participants per active room.
func (c *RoomClient) ListActiveRooms(ctx context.Context) (map[string]int, error) {
	resp, err := c.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, err
	}
	rooms := make(map[string]int, len(resp.Rooms))
	for _, room := range resp.Rooms {
		rooms[room.Name] = int(room.NumParticipants)
	}
	return rooms, nil
}
