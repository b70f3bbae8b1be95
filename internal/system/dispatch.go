package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/world"
)

// EventDispatchSystem opens every tick: it advances the scene tick and
// delivers what the previous tick emitted. Register it before the other
// Input systems. Phase 0 (Input).
type EventDispatchSystem struct {
	bus     *event.Bus
	state   *world.State
	metrics *Metrics
	log     *zap.Logger
}

func NewEventDispatchSystem(bus *event.Bus, state *world.State, metrics *Metrics, log *zap.Logger) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus, state: state, metrics: metrics, log: log}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.state.Tick++
	s.bus.SwapBuffers()
	if n := s.bus.DispatchAll(); n > 0 {
		s.log.Debug("events dispatched", zap.Uint64("tick", s.state.Tick), zap.Int("count", n))
	}
	s.metrics.Ticks.Add(context.Background(), 1)
}
