package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/persist"
)

// JournalSystem buffers narrative events and writes them to the journal
// every flushEvery ticks. A failed batch stays buffered for the next flush;
// past maxBuffered entries the oldest are dropped. Phase 4 (Persist).
type JournalSystem struct {
	journal     persist.Journal
	runID       int64
	flushEvery  int
	maxBuffered int
	log         *zap.Logger

	buf        []persist.Entry
	sinceFlush int
}

func NewJournalSystem(bus *event.Bus, j persist.Journal, runID int64, flushEvery, maxBuffered int, log *zap.Logger) *JournalSystem {
	if flushEvery <= 0 {
		flushEvery = 1
	}
	s := &JournalSystem{journal: j, runID: runID, flushEvery: flushEvery, maxBuffered: maxBuffered, log: log}

	event.Subscribe(bus, func(e event.CuttingStarted) {
		s.add(e.Tick, "cutting_started", nil)
	})
	event.Subscribe(bus, func(e event.CuttingStopped) {
		s.add(e.Tick, "cutting_stopped", map[string]any{
			"reason":        string(e.Reason),
			"elapsed":       e.Elapsed,
			"total_impulse": e.TotalImpulse,
		})
	})
	event.Subscribe(bus, func(e event.TrunkReleased) {
		s.add(e.Tick, "trunk_released", map[string]any{"elapsed": e.Elapsed})
	})
	event.Subscribe(bus, func(e event.HouseCollapsed) {
		s.add(e.Tick, "house_collapsed", map[string]any{
			"x": e.At[0], "y": e.At[1], "z": e.At[2],
			"pieces": e.Pieces,
		})
	})
	event.Subscribe(bus, func(e event.EmitterSpawned) {
		s.add(e.Tick, "emitter_spawned", map[string]any{"x": e.At[0], "y": e.At[1], "z": e.At[2]})
	})
	event.Subscribe(bus, func(e event.EmitterTornDown) {
		s.add(e.Tick, "emitter_torn_down", map[string]any{"emitted": e.Emitted, "remaining": e.Remaining})
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.sinceFlush++
	if s.sinceFlush < s.flushEvery {
		return
	}
	s.sinceFlush = 0
	_ = s.Flush(context.Background())
}

// Buffered returns how many entries wait for the next flush.
func (s *JournalSystem) Buffered() int { return len(s.buf) }

// Flush writes every buffered entry. Called on shutdown so nothing is lost.
func (s *JournalSystem) Flush(ctx context.Context) error {
	if len(s.buf) == 0 {
		return nil
	}
	if err := s.journal.Append(ctx, s.runID, s.buf); err != nil {
		s.log.Warn("journal flush failed", zap.Error(err), zap.Int("buffered", len(s.buf)))
		return err
	}
	s.buf = nil
	return nil
}

func (s *JournalSystem) add(tick uint64, kind string, data map[string]any) {
	s.buf = append(s.buf, persist.Entry{Tick: tick, Kind: kind, Data: data})
	if s.maxBuffered > 0 && len(s.buf) > s.maxBuffered {
		drop := len(s.buf) - s.maxBuffered
		s.log.Warn("journal buffer full, dropping oldest entries", zap.Int("dropped", drop))
		s.buf = append(s.buf[:0], s.buf[drop:]...)
	}
}
