package system

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/persist"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/world"
)

// Deps carries everything the scene systems need. Drawer and Sound are
// optional; a nil Journal disables journaling.
type Deps struct {
	Bus     *event.Bus
	State   *world.State
	Physics physics.World
	Rules   world.Rules
	Effects effect.Config
	Rand    *rand.Rand

	ReleaseOnTouchLost bool

	Drawer Drawer
	Sound  SoundPlayer

	Journal     persist.Journal
	RunID       int64
	FlushTicks  int
	MaxBuffered int

	Metrics *Metrics
	Log     *zap.Logger
}

// Scene exposes the registered systems the binary and tests reach into.
type Scene struct {
	Monitor  *TriggerMonitor
	Cutting  *CuttingSystem
	Effects  *EffectSystem
	Collapse *CollapseSystem
	Journal  *JournalSystem

	bus *event.Bus
}

// Drain delivers the events the last tick emitted, which would otherwise
// wait for the next tick's dispatch. Call it once ticking has stopped and
// before the final journal flush.
func (sc *Scene) Drain() int {
	sc.bus.SwapBuffers()
	return sc.bus.DispatchAll()
}

// RegisterScene wires the scene controller into r and points the physics
// world's notifications at the bus. Registration order fixes the order of
// systems within a phase.
func RegisterScene(r *coresys.Runner, d Deps) (*Scene, error) {
	if d.Metrics == nil {
		m, err := NewMetrics()
		if err != nil {
			return nil, err
		}
		d.Metrics = m
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(1))
	}
	log := d.Log
	d.Physics.SetSink(BusSink{Bus: d.Bus})

	sc := &Scene{bus: d.Bus}
	r.Register(NewEventDispatchSystem(d.Bus, d.State, d.Metrics, log))
	sc.Monitor = NewTriggerMonitor(d.Bus, d.State, d.Rules, d.ReleaseOnTouchLost, log.Named("monitor"))
	r.Register(sc.Monitor)
	r.Register(NewPlayerSystem(d.Bus, d.State, d.Physics, log))

	sc.Collapse = NewCollapseSystem(d.Bus, d.State, d.Physics, d.Metrics, log.Named("collapse"))
	sc.Effects = NewEffectSystem(d.Bus, d.State, d.Physics, d.Effects, d.Rand, d.Metrics, log.Named("effects"))
	sc.Cutting = NewCuttingSystem(d.Bus, d.State, d.Physics, d.Rules, sc.Effects, d.Metrics, log.Named("cutting"))
	r.Register(sc.Collapse)
	r.Register(sc.Cutting)
	r.Register(sc.Effects)

	r.Register(NewSimulateSystem(d.Physics))

	if d.Drawer != nil {
		r.Register(NewRenderSystem(d.Drawer, d.Physics, d.State))
	}
	if d.Sound != nil {
		r.Register(NewAudioSystem(d.Bus, d.Sound))
	}
	if d.Journal != nil {
		sc.Journal = NewJournalSystem(d.Bus, d.Journal, d.RunID, d.FlushTicks, d.MaxBuffered, log.Named("journal"))
		r.Register(sc.Journal)
	}
	r.Register(NewCleanupSystem(d.State, log))
	return sc, nil
}
