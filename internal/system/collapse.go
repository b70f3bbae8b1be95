package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/world"
)

// CollapseSystem replaces the cabin with its debris the first tick the
// house has taken a damaging impact. It fires once per scene.
// Phase 1 (Update).
type CollapseSystem struct {
	bus     *event.Bus
	state   *world.State
	pw      physics.World
	metrics *Metrics
	log     *zap.Logger
}

func NewCollapseSystem(bus *event.Bus, state *world.State, pw physics.World, metrics *Metrics, log *zap.Logger) *CollapseSystem {
	return &CollapseSystem{bus: bus, state: state, pw: pw, metrics: metrics, log: log}
}

func (s *CollapseSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CollapseSystem) Update(_ time.Duration) {
	st := s.state
	if !st.HouseFallen || st.Collapsed {
		return
	}
	st.Collapsed = true

	pose, ok := s.pw.GlobalPose(st.Cabin)
	if !ok {
		s.log.Warn("cabin body missing, collapse skipped", zap.Uint64("tick", st.Tick))
		return
	}
	// The cabin leaves the scene before any debris enters it.
	st.Release(s.pw, st.Cabin)

	n, err := st.SpawnDebris(s.pw, pose.P)
	if err != nil {
		s.log.Warn("debris spawn incomplete", zap.Error(err), zap.Int("spawned", n))
	}
	event.Emit(s.bus, event.HouseCollapsed{Tick: st.Tick, At: pose.P, Pieces: n})
	s.metrics.Collapses.Add(context.Background(), 1)
	s.log.Info("house collapsed",
		zap.Uint64("tick", st.Tick),
		zap.Int("pieces", n),
		zap.Float64("x", pose.P[0]),
		zap.Float64("y", pose.P[1]),
		zap.Float64("z", pose.P[2]))
}
