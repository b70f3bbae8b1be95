package system

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/component"
	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/prop"
	"github.com/woodcut/treehouse/internal/world"
)

// EffectSystem owns the sawdust emitter's lifecycle and keeps its particles
// in step with the physics scene: new particles are added, dead ones are
// removed exactly once. Phase 1 (Update), after cutting.
type EffectSystem struct {
	bus     *event.Bus
	state   *world.State
	pw      physics.World
	cfg     effect.Config
	rng     *rand.Rand
	metrics *Metrics
	log     *zap.Logger
}

func NewEffectSystem(bus *event.Bus, state *world.State, pw physics.World, cfg effect.Config, rng *rand.Rand, metrics *Metrics, log *zap.Logger) *EffectSystem {
	return &EffectSystem{bus: bus, state: state, pw: pw, cfg: cfg, rng: rng, metrics: metrics, log: log}
}

func (s *EffectSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// EnsureEmitterAt creates the emitter at p, or moves the active one there.
func (s *EffectSystem) EnsureEmitterAt(p physics.Vec3) {
	pose := physics.At(p[0], p[1], p[2])
	if e := s.state.Emitter; e != nil {
		e.SetPose(pose)
		s.pw.SetGlobalPose(e.Handle, pose)
		return
	}
	spawned, _, err := s.state.Spawn(s.pw, prop.EmitterBody(pose))
	if err != nil {
		s.log.Warn("emitter spawn failed", zap.Error(err))
		return
	}
	e := effect.NewEmitter(pose, s.cfg, s.rng)
	e.Handle = spawned.Root()
	s.state.Emitter = e
	event.Emit(s.bus, event.EmitterSpawned{Tick: s.state.Tick, At: p})
	s.log.Info("emitter spawned", zap.Uint64("tick", s.state.Tick))
}

// TeardownEmitter removes the active emitter and every particle of it still
// in the scene. Without an active emitter it does nothing.
func (s *EffectSystem) TeardownEmitter() {
	e := s.state.Emitter
	if e == nil {
		return
	}
	remaining := s.releaseAll(e.Live()) + s.releaseAll(e.Dead())
	e.ClearDead()
	s.state.Release(s.pw, e.Handle)
	s.state.Emitter = nil

	event.Emit(s.bus, event.EmitterTornDown{Tick: s.state.Tick, Emitted: e.Emitted(), Remaining: remaining})
	s.log.Info("emitter torn down",
		zap.Uint64("tick", s.state.Tick),
		zap.Int("emitted", e.Emitted()),
		zap.Int("remaining", remaining))
}

func (s *EffectSystem) Update(dt time.Duration) {
	e := s.state.Emitter
	if e == nil {
		return
	}
	e.Update(dt.Seconds())

	promoted := 0
	for _, p := range e.Live() {
		if p.InScene {
			continue
		}
		spawned, ids, err := s.state.Spawn(s.pw, prop.ParticleBody(p.Pose))
		if err != nil {
			s.log.Warn("particle spawn failed", zap.Int("particle", p.ID), zap.Error(err))
			continue
		}
		p.Handle = spawned.Root()
		p.InScene = true
		s.pw.SetLinearVelocity(p.Handle, p.Velocity)
		s.state.Particles.Set(ids[0], &component.Particle{ID: p.ID})
		promoted++
	}
	removed := s.releaseAll(e.Dead())
	e.ClearDead()

	ctx := context.Background()
	if promoted > 0 {
		s.metrics.Promoted.Add(ctx, int64(promoted))
	}
	if removed > 0 {
		s.metrics.Removed.Add(ctx, int64(removed))
	}
}

func (s *EffectSystem) releaseAll(ps []*effect.Particle) int {
	n := 0
	for _, p := range ps {
		if !p.InScene {
			continue
		}
		s.state.Release(s.pw, p.Handle)
		p.InScene = false
		n++
	}
	return n
}
