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

// CuttingSystem runs the chainsaw. While the cutting flag is set and the
// trunk base holds, every tick adds dt to the session and pushes the trunk
// away from the player with an impulse growing with the elapsed time.
// Phase 1 (Update).
type CuttingSystem struct {
	bus     *event.Bus
	state   *world.State
	pw      physics.World
	rules   world.Rules
	effects *EffectSystem
	metrics *Metrics
	log     *zap.Logger

	warnedNoTrunk bool
}

func NewCuttingSystem(bus *event.Bus, state *world.State, pw physics.World, rules world.Rules, effects *EffectSystem, metrics *Metrics, log *zap.Logger) *CuttingSystem {
	return &CuttingSystem{
		bus:     bus,
		state:   state,
		pw:      pw,
		rules:   rules,
		effects: effects,
		metrics: metrics,
		log:     log,
	}
}

func (s *CuttingSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CuttingSystem) Update(dt time.Duration) {
	st := s.state
	if !st.ChainsawTriggered {
		s.stop(event.StopReleased)
		return
	}
	target, ok := st.CutTarget()
	if !ok {
		if !s.warnedNoTrunk {
			s.log.Warn("tree has no trunk parts, cutting disabled")
			s.warnedNoTrunk = true
		}
		s.stop(event.StopNoTrunk)
		return
	}
	if s.pw.ConstraintBroken(st.TrunkBase) {
		s.stop(event.StopJointBroken)
		return
	}

	if !st.Cutting.Started {
		st.Cutting = world.CuttingSession{Started: true}
		event.Emit(s.bus, event.CuttingStarted{Tick: st.Tick})
		s.log.Info("cutting started", zap.Uint64("tick", st.Tick))
	}
	st.Cutting.Elapsed += dt.Seconds()
	st.Cutting.Ticks++

	if !s.push(target) {
		return
	}
	s.effects.EnsureEmitterAt(st.EmitterAt)
}

// push applies this tick's impulse to the cut target. A missing pose skips
// the impulse only. It reports false once the trunk base has broken and the
// session was stopped.
func (s *CuttingSystem) push(target physics.Handle) bool {
	st := s.state
	trunk, okT := s.pw.GlobalPose(target)
	player, okP := s.pw.GlobalPose(st.Player)
	if !okT || !okP {
		s.log.Warn("cutting skipped, body missing",
			zap.Bool("trunk", okT),
			zap.Bool("player", okP),
			zap.Uint64("tick", st.Tick))
		return true
	}
	magnitude := s.rules.CutImpulse(st.Cutting.Elapsed)
	s.pw.ApplyImpulse(target, physics.Direction(player.P, trunk.P).Mul(magnitude))
	st.Cutting.TotalImpulse += magnitude
	s.metrics.CutImpulse.Record(context.Background(), magnitude)
	s.log.Debug("cut impulse",
		zap.Uint64("tick", st.Tick),
		zap.Float64("elapsed", st.Cutting.Elapsed),
		zap.Float64("impulse", magnitude))

	if s.pw.ConstraintBroken(st.TrunkBase) {
		s.stop(event.StopJointBroken)
		return false
	}
	return true
}

// stop ends an active session and tears the emitter down. It is a no-op
// when nothing is running.
func (s *CuttingSystem) stop(reason event.StopReason) {
	st := s.state
	if !st.Cutting.Started {
		s.effects.TeardownEmitter()
		return
	}
	session := st.Cutting
	st.Cutting = world.CuttingSession{}

	event.Emit(s.bus, event.CuttingStopped{
		Tick:         st.Tick,
		Reason:       reason,
		Elapsed:      session.Elapsed,
		TotalImpulse: session.TotalImpulse,
	})
	if reason == event.StopJointBroken {
		event.Emit(s.bus, event.TrunkReleased{Tick: st.Tick, Elapsed: session.Elapsed})
	}
	s.effects.TeardownEmitter()
	s.log.Info("cutting stopped",
		zap.String("reason", string(reason)),
		zap.Uint64("tick", st.Tick),
		zap.Float64("elapsed", session.Elapsed),
		zap.Float64("total_impulse", session.TotalImpulse),
		zap.Int("ticks", session.Ticks))
}
