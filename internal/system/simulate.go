package system

import (
	"time"

	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/physics"
)

// SimulateSystem steps the physics world. Notifications raised during the
// step reach the bus through the world's sink. Phase 2 (Simulate).
type SimulateSystem struct {
	pw physics.World
}

func NewSimulateSystem(pw physics.World) *SimulateSystem {
	return &SimulateSystem{pw: pw}
}

func (s *SimulateSystem) Phase() coresys.Phase { return coresys.PhaseSimulate }

func (s *SimulateSystem) Update(dt time.Duration) {
	s.pw.Simulate(dt.Seconds())
}
