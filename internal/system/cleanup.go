package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/world"
)

// CleanupSystem destroys the actors released during the tick, dropping
// their components. Phase 5 (Cleanup).
type CleanupSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewCleanupSystem(state *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{state: state, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.state.Actors.FlushDestroyQueue(); n > 0 {
		s.log.Debug("actors destroyed", zap.Int("count", n), zap.Uint64("tick", s.state.Tick))
	}
}
