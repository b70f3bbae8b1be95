package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/world"
)

// PlayerSystem applies queued movement commands to the kinematic player.
// Phase 0 (Input).
type PlayerSystem struct {
	state *world.State
	pw    physics.World
	log   *zap.Logger
	moves []event.Direction
}

func NewPlayerSystem(bus *event.Bus, state *world.State, pw physics.World, log *zap.Logger) *PlayerSystem {
	s := &PlayerSystem{state: state, pw: pw, log: log}
	event.Subscribe(bus, func(e event.PlayerMoveRequested) { s.moves = append(s.moves, e.Dir) })
	return s
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PlayerSystem) Update(_ time.Duration) {
	for _, dir := range s.moves {
		if !s.state.MovePlayer(s.pw, dir) {
			s.log.Warn("player body missing, move dropped", zap.Stringer("dir", dir))
		}
	}
	s.moves = s.moves[:0]
}
