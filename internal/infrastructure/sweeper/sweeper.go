// Package sweeper removes expired preview agents in the background and
// samples LiveKit room occupancy on the same cadence.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/infrastructure/metrics"
)

// RoomLister reports live rooms and their participant counts.
type RoomLister interface {
	ListActiveRooms(ctx context.Context) (map[string]int, error)
}

// Sweeper periodically hard-deletes preview agents whose delete_after has
// passed. The TTL is soft: a session admitted just before expiry keeps
// running even after its agent row is gone, since session rows only hold a
// nullable back-reference. Each pass also refreshes the room occupancy
// gauges from LiveKit.
type Sweeper struct {
	agents    agent.Store
	rooms     RoomLister
	interval  time.Duration
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSweeper creates a new preview-agent sweeper. A nil rooms lister skips
// occupancy sampling.
func NewSweeper(agents agent.Store, rooms RoomLister, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		agents:   agents,
		rooms:    rooms,
		interval: interval,
		log:      log.With().Str("component", "preview-sweeper").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background.
// Safe to call multiple times - only the first call starts the sweeper.
func (s *Sweeper) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
		s.log.Info().Dur("interval", s.interval).Msg("preview sweeper started")
	})
}

// Stop gracefully shuts down the sweeper.
// Safe to call multiple times - only the first call stops the sweeper.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.log.Info().Msg("preview sweeper stopped")
	})
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("context cancelled, shutting down sweeper")
			return
		case <-s.done:
			s.log.Debug().Msg("done signal received, shutting down sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged, err := s.agents.DeleteExpiredPreviews(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to delete expired preview agents")
	} else if purged > 0 {
		metrics.RecordPreviewPurge(purged)
		s.log.Info().Int64("purged", purged).Msg("expired preview agents removed")
	}

	s.sampleRooms(ctx)
}

func (s *Sweeper) sampleRooms(ctx context.Context) {
	if s.rooms == nil {
		return
	}
	rooms, err := s.rooms.ListActiveRooms(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list active rooms")
		return
	}
	participants := 0
	for _, n := range rooms {
		participants += n
	}
	metrics.SetRoomOccupancy(len(rooms), participants)
}
