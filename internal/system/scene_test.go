package system

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/data"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/persist"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/physics/physicstest"
	"github.com/woodcut/treehouse/internal/prop"
	"github.com/woodcut/treehouse/internal/world"
)

const (
	dt    = time.Second / 60
	scale = 20000.0
)

type harness struct {
	t      *testing.T
	bus    *event.Bus
	pw     *physicstest.World
	state  *world.State
	runner *coresys.Runner
	scene  *Scene
	logs   *observer.ObservedLogs
	seen   []any
}

type option func(*Deps)

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	pw := physicstest.New()
	st, err := world.Build(pw, data.DefaultLayout(), data.DefaultDebris(), world.Options{Seed: 1}, log)
	require.NoError(t, err)

	h := &harness{t: t, bus: event.NewBus(), pw: pw, state: st, runner: coresys.NewRunner(), logs: logs}
	d := Deps{
		Bus:     h.bus,
		State:   st,
		Physics: pw,
		Rules:   world.DefaultRules{Scale: scale},
		Effects: effect.DefaultConfig(),
		Log:     log,
	}
	for _, o := range opts {
		o(&d)
	}
	h.scene, err = RegisterScene(h.runner, d)
	require.NoError(t, err)

	record := func(v any) { h.seen = append(h.seen, v) }
	event.Subscribe(h.bus, func(e event.CuttingStarted) { record(e) })
	event.Subscribe(h.bus, func(e event.CuttingStopped) { record(e) })
	event.Subscribe(h.bus, func(e event.TrunkReleased) { record(e) })
	event.Subscribe(h.bus, func(e event.HouseCollapsed) { record(e) })
	event.Subscribe(h.bus, func(e event.EmitterSpawned) { record(e) })
	event.Subscribe(h.bus, func(e event.EmitterTornDown) { record(e) })
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.runner.Tick(dt)
	}
}

func (h *harness) touch(status physics.TouchStatus) {
	event.Emit(h.bus, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Player, Status: status})
}

func (h *harness) target() *physicstest.Body {
	target, ok := h.state.CutTarget()
	require.True(h.t, ok)
	return h.pw.Body(target)
}

func seenOf[T any](h *harness) []T {
	var out []T
	for _, v := range h.seen {
		if e, ok := v.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestRegisterScenePhases(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 3, h.runner.Len(coresys.PhaseInput))
	assert.Equal(t, 3, h.runner.Len(coresys.PhaseUpdate))
	assert.Equal(t, 1, h.runner.Len(coresys.PhaseSimulate))
	assert.Equal(t, 0, h.runner.Len(coresys.PhaseOutput), "no drawer or sound configured")
	assert.Equal(t, 0, h.runner.Len(coresys.PhasePersist), "no journal configured")
	assert.Equal(t, 1, h.runner.Len(coresys.PhaseCleanup))
	assert.Nil(t, h.scene.Journal)
}

func TestTouchStartsCuttingAndSpawnsEmitter(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.state.ChainsawTriggered)

	h.touch(physics.TouchFound)
	h.tick(3)

	st := h.state
	assert.True(t, st.ChainsawTriggered)
	assert.True(t, st.Cutting.Started)
	assert.InDelta(t, 0.05, st.Cutting.Elapsed, 1e-6)
	assert.Equal(t, 3, st.Cutting.Ticks)

	require.NotNil(t, st.Emitter)
	at := st.Emitter.Pose().P
	assert.InDelta(t, 10, at[0], 1e-9)
	assert.InDelta(t, 1, at[1], 1e-9)
	assert.InDelta(t, -0.5, at[2], 1e-9)
	assert.Equal(t, 1, h.pw.InScene(prop.Emitter))
	pose, ok := h.pw.GlobalPose(st.Emitter.Handle)
	require.True(t, ok)
	assert.InDelta(t, 10, pose.P[0], 1e-9)
}

func TestCutImpulseRampsLinearly(t *testing.T) {
	for _, ticks := range []int{1, 5, 30} {
		h := newHarness(t)
		h.state.ChainsawTriggered = true
		h.tick(ticks)

		impulses := h.target().Impulses
		require.Len(t, impulses, ticks)

		player, _ := h.pw.GlobalPose(h.state.Player)
		trunk, _ := h.pw.GlobalPose(h.state.TrunkParts[1])
		dir := physics.Direction(player.P, trunk.P)

		step := dt.Seconds()
		sum := 0.0
		for i, imp := range impulses {
			want := scale * step * float64(i+1)
			assert.InDelta(t, want, imp.Len(), 1e-6, "tick %d", i+1)
			assert.InDelta(t, 1, imp.Normalize().Dot(dir), 1e-9)
			sum += imp.Len()
		}
		n := float64(ticks)
		assert.InDelta(t, scale*step*n*(n+1)/2, sum, 1e-6)
		assert.InDelta(t, sum, h.state.Cutting.TotalImpulse, 1e-6)
	}
}

func TestCuttingStopsWhenFlagClears(t *testing.T) {
	h := newHarness(t)
	h.state.ChainsawTriggered = true
	h.tick(2)
	require.NotNil(t, h.state.Emitter)

	h.state.ChainsawTriggered = false
	h.tick(1)
	assert.False(t, h.state.Cutting.Started)
	assert.Zero(t, h.state.Cutting.Elapsed)
	assert.Nil(t, h.state.Emitter)
	assert.Zero(t, h.pw.InScene(prop.Emitter))
	assert.Len(t, h.target().Impulses, 2)

	h.tick(1)
	stopped := seenOf[event.CuttingStopped](h)
	require.Len(t, stopped, 1)
	assert.Equal(t, event.StopReleased, stopped[0].Reason)
	assert.InDelta(t, 2*dt.Seconds(), stopped[0].Elapsed, 1e-9)
	assert.Len(t, seenOf[event.EmitterTornDown](h), 1)
	assert.Empty(t, seenOf[event.TrunkReleased](h))

	// restarting resets the session
	h.state.ChainsawTriggered = true
	h.tick(1)
	assert.InDelta(t, dt.Seconds(), h.state.Cutting.Elapsed, 1e-9)
}

func TestBrokenTrunkBaseEndsCutting(t *testing.T) {
	h := newHarness(t)
	h.state.ChainsawTriggered = true
	h.tick(2)

	h.pw.Break(h.state.TrunkBase)
	h.tick(3)

	assert.True(t, h.state.ChainsawTriggered)
	assert.False(t, h.state.Cutting.Started)
	assert.Nil(t, h.state.Emitter)
	assert.Len(t, h.target().Impulses, 2)

	stopped := seenOf[event.CuttingStopped](h)
	require.Len(t, stopped, 1)
	assert.Equal(t, event.StopJointBroken, stopped[0].Reason)
	assert.Len(t, seenOf[event.TrunkReleased](h), 1)
	assert.Len(t, seenOf[event.CuttingStarted](h), 1)
}

func TestEmptyTrunkIsInert(t *testing.T) {
	h := newHarness(t)
	h.state.TrunkParts = nil
	h.state.ChainsawTriggered = true
	h.tick(3)

	assert.False(t, h.state.Cutting.Started)
	assert.Nil(t, h.state.Emitter)
	h.pw.Bodies(func(handle physics.Handle, _ physics.BodyView) {
		assert.Empty(t, h.pw.Body(handle).Impulses)
	})
	assert.Equal(t, 1, h.logs.FilterMessage("tree has no trunk parts, cutting disabled").Len())
}

func TestMissingPlayerSkipsImpulse(t *testing.T) {
	h := newHarness(t)
	h.pw.Forget(h.state.Player)
	h.state.ChainsawTriggered = true
	h.tick(2)

	assert.Empty(t, h.target().Impulses)
	assert.InDelta(t, 2*dt.Seconds(), h.state.Cutting.Elapsed, 1e-9)
	require.NotNil(t, h.state.Emitter, "the emitter is kept while the impulse is skipped")
	assert.Equal(t, h.state.EmitterAt, h.state.Emitter.Pose().P)
	warnings := h.logs.FilterMessage("cutting skipped, body missing").FilterLevelExact(zapcore.WarnLevel)
	assert.Equal(t, 2, warnings.Len())
}

func TestCollapseFiresOnce(t *testing.T) {
	h := newHarness(t)
	cabin := h.state.Cabin
	before, _ := h.pw.GlobalPose(cabin)

	hit := event.ContactReported{A: prop.House, B: prop.Floor, Status: physics.TouchFound, MaxImpulse: 3}
	event.Emit(h.bus, hit)
	event.Emit(h.bus, hit)
	h.tick(1)

	assert.True(t, h.state.HouseFallen)
	assert.True(t, h.state.Collapsed)
	assert.Zero(t, h.pw.InScene(prop.House))
	assert.Equal(t, 6, h.pw.InScene(prop.Wall))
	assert.Equal(t, 5, h.pw.InScene(prop.Roof))
	assert.Equal(t, 5, h.pw.InScene(prop.Log))

	walls := h.pw.FindByName(prop.Wall)
	pose, _ := h.pw.GlobalPose(walls[0])
	assert.Equal(t, before.P.Add(physics.Vec3{-1, 0, 0}), pose.P)

	event.Emit(h.bus, hit)
	h.tick(2)
	assert.Equal(t, 6, h.pw.InScene(prop.Wall))

	removed := 0
	for _, r := range h.pw.Removed {
		if r == cabin {
			removed++
		}
	}
	assert.Equal(t, 1, removed)

	collapsed := seenOf[event.HouseCollapsed](h)
	require.Len(t, collapsed, 1)
	assert.Equal(t, 16, collapsed[0].Pieces)
	assert.Equal(t, before.P, collapsed[0].At)
}

func TestCollapseWithoutCabinBody(t *testing.T) {
	h := newHarness(t)
	h.pw.Forget(h.state.Cabin)
	h.state.HouseFallen = true
	h.tick(2)

	assert.True(t, h.state.Collapsed)
	assert.Zero(t, h.pw.InScene(prop.Wall))
	assert.Equal(t, 1, h.logs.FilterMessage("cabin body missing, collapse skipped").Len())
}

func TestMonitor(t *testing.T) {
	tests := []struct {
		name          string
		releaseOnLost bool
		start         bool
		ev            any
		cutting       bool
		fallen        bool
	}{
		{"found sets", false, false, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Player}, true, false},
		{"lost sets too", false, false, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Player, Status: physics.TouchLost}, true, false},
		{"lost clears when configured", true, true, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Player, Status: physics.TouchLost}, false, false},
		{"plane partner ignored", false, false, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Player, OtherIsPlane: true}, false, false},
		{"other volume ignored", false, false, event.TriggerTouched{Volume: "gate", Other: prop.Player}, false, false},
		{"other actor ignored", false, false, event.TriggerTouched{Volume: prop.TreeTrigger, Other: prop.Log}, false, false},
		{"impact fells house", false, false, event.ContactReported{A: prop.House, B: prop.Floor, MaxImpulse: 0.01}, false, true},
		{"zero impulse ignored", false, false, event.ContactReported{A: prop.House, B: prop.Floor}, false, false},
		{"lost contact ignored", false, false, event.ContactReported{A: prop.House, B: prop.Floor, Status: physics.TouchLost, MaxImpulse: 5}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := event.NewBus()
			st := world.NewState()
			st.ChainsawTriggered = tt.start
			m := NewTriggerMonitor(bus, st, world.DefaultRules{Scale: scale}, tt.releaseOnLost, zap.NewNop())

			switch e := tt.ev.(type) {
			case event.TriggerTouched:
				event.Emit(bus, e)
			case event.ContactReported:
				event.Emit(bus, e)
			}
			bus.SwapBuffers()
			bus.DispatchAll()
			m.Update(dt)

			assert.Equal(t, tt.cutting, st.ChainsawTriggered)
			assert.Equal(t, tt.fallen, st.HouseFallen)
		})
	}
}

func TestPhysicsNotificationsReachMonitorNextTick(t *testing.T) {
	h := newHarness(t)
	h.pw.Trigger(physics.TriggerPair{Trigger: prop.TreeTrigger, Other: prop.Player})

	h.tick(1)
	assert.False(t, h.state.ChainsawTriggered)
	h.tick(1)
	assert.True(t, h.state.ChainsawTriggered)
	assert.Equal(t, 1, h.state.Cutting.Ticks)
}

func TestPlayerMoves(t *testing.T) {
	h := newHarness(t)
	start, _ := h.pw.GlobalPose(h.state.Player)
	event.Emit(h.bus, event.PlayerMoveRequested{Dir: event.MoveLeft})
	event.Emit(h.bus, event.PlayerMoveRequested{Dir: event.MoveUp})
	h.tick(1)

	pose, _ := h.pw.GlobalPose(h.state.Player)
	assert.InDelta(t, start.P[0]+0.5, pose.P[0], 1e-12)
	assert.InDelta(t, start.P[2]-0.5, pose.P[2], 1e-12)
}

func TestEmitterLifecycle(t *testing.T) {
	h := newHarness(t)
	fx := h.scene.Effects

	fx.TeardownEmitter()
	assert.Nil(t, h.state.Emitter)

	fx.EnsureEmitterAt(physics.Vec3{10, 1, -0.5})
	first := h.state.Emitter
	require.NotNil(t, first)
	fx.EnsureEmitterAt(physics.Vec3{11, 1, -0.5})
	assert.Same(t, first, h.state.Emitter)
	assert.Equal(t, 1, h.pw.InScene(prop.Emitter))
	pose, _ := h.pw.GlobalPose(first.Handle)
	assert.Equal(t, physics.Vec3{11, 1, -0.5}, pose.P)

	fx.TeardownEmitter()
	fx.TeardownEmitter()
	assert.Nil(t, h.state.Emitter)
	assert.Zero(t, h.pw.InScene(prop.Emitter))
}

func fastEmitter(d *Deps) {
	d.Effects = effect.Config{Rate: 100, MaxParticles: 5, LifeSpan: 10, Decay: 2, Spread: math.Pi / 6}
}

func TestParticlesEnterAndLeaveTheScene(t *testing.T) {
	h := newHarness(t, fastEmitter)
	fx := h.scene.Effects
	fx.EnsureEmitterAt(physics.Vec3{10, 1, -0.5})

	fx.Update(100 * time.Millisecond)
	e := h.state.Emitter
	assert.Equal(t, 5, e.Emitted())
	assert.Equal(t, 5, h.pw.InScene(prop.Particle))
	assert.Equal(t, 5, h.state.Particles.Len())
	for _, p := range e.Live() {
		assert.True(t, p.InScene)
		assert.NotEqual(t, physics.Vec3{}, h.pw.Body(p.Handle).Velocity)
	}

	// life 10, decay 2: dead on the sixth update
	for i := 0; i < 4; i++ {
		fx.Update(100 * time.Millisecond)
	}
	assert.Equal(t, 5, h.pw.InScene(prop.Particle))
	fx.Update(100 * time.Millisecond)
	assert.Zero(t, h.pw.InScene(prop.Particle))
	assert.Empty(t, e.Live())
	assert.Empty(t, e.Dead())

	removed := len(h.pw.Removed)
	fx.Update(100 * time.Millisecond)
	assert.Equal(t, removed, len(h.pw.Removed), "dead particles are removed once")

	h.state.Actors.FlushDestroyQueue()
	assert.Zero(t, h.state.Particles.Len())
}

func TestTeardownRemovesLiveParticles(t *testing.T) {
	h := newHarness(t, fastEmitter)
	fx := h.scene.Effects
	fx.EnsureEmitterAt(physics.Vec3{10, 1, -0.5})
	fx.Update(100 * time.Millisecond)
	require.Equal(t, 5, h.pw.InScene(prop.Particle))

	fx.TeardownEmitter()
	assert.Zero(t, h.pw.InScene(prop.Particle))
	assert.Zero(t, h.pw.InScene(prop.Emitter))

	h.tick(1)
	torn := seenOf[event.EmitterTornDown](h)
	require.Len(t, torn, 1)
	assert.Equal(t, 5, torn[0].Emitted)
	assert.Equal(t, 5, torn[0].Remaining)
}

type fakeSound struct{ calls []string }

func (f *fakeSound) StartChainsaw() { f.calls = append(f.calls, "saw on") }
func (f *fakeSound) StopChainsaw()  { f.calls = append(f.calls, "saw off") }
func (f *fakeSound) Crash()         { f.calls = append(f.calls, "crash") }

func TestAudioFollowsNarrative(t *testing.T) {
	sound := &fakeSound{}
	h := newHarness(t, func(d *Deps) { d.Sound = sound })

	h.state.ChainsawTriggered = true
	h.tick(2)
	h.state.ChainsawTriggered = false
	h.state.HouseFallen = true
	h.tick(2)

	assert.Equal(t, []string{"saw on", "crash", "saw off"}, sound.calls)
}

type fakeJournal struct {
	fail    error
	entries []persist.Entry
	calls   int
}

func (f *fakeJournal) StartRun(context.Context, string, int64) (int64, error) { return 7, nil }
func (f *fakeJournal) FinishRun(context.Context, int64, uint64) error         { return nil }
func (f *fakeJournal) Append(_ context.Context, runID int64, entries []persist.Entry) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func TestJournalFlushesNarrative(t *testing.T) {
	j := &fakeJournal{}
	h := newHarness(t, func(d *Deps) {
		d.Journal = j
		d.FlushTicks = 2
	})

	h.state.ChainsawTriggered = true
	h.tick(2)
	h.state.ChainsawTriggered = false
	h.tick(2)
	require.NoError(t, h.scene.Journal.Flush(context.Background()))

	var kinds []string
	for _, e := range j.entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"cutting_started", "emitter_spawned", "cutting_stopped", "emitter_torn_down"}, kinds)
	assert.Equal(t, "released", j.entries[2].Data["reason"])
	assert.Zero(t, h.scene.Journal.Buffered())
}

func TestDrainDeliversLastTickToJournal(t *testing.T) {
	j := &fakeJournal{}
	h := newHarness(t, func(d *Deps) {
		d.Journal = j
		d.FlushTicks = 1000
	})

	h.state.HouseFallen = true
	h.tick(1)
	require.True(t, h.state.Collapsed)
	assert.Zero(t, h.scene.Journal.Buffered(), "collapse is still on the bus")

	assert.Equal(t, 1, h.scene.Drain())
	require.NoError(t, h.scene.Journal.Flush(context.Background()))
	require.Len(t, j.entries, 1)
	assert.Equal(t, "house_collapsed", j.entries[0].Kind)
	assert.Equal(t, 16, j.entries[0].Data["pieces"])
	assert.Zero(t, h.bus.Pending())
}

func TestJournalKeepsBatchOnFailure(t *testing.T) {
	j := &fakeJournal{fail: errors.New("connection refused")}
	core, logs := observer.New(zapcore.WarnLevel)
	bus := event.NewBus()
	s := NewJournalSystem(bus, j, 7, 1, 3, zap.New(core))

	for i := 0; i < 5; i++ {
		event.Emit(bus, event.CuttingStarted{Tick: uint64(i)})
	}
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 3, s.Buffered())
	assert.Equal(t, 2, logs.FilterMessage("journal buffer full, dropping oldest entries").Len())

	s.Update(dt)
	assert.Equal(t, 3, s.Buffered())
	assert.Equal(t, 1, logs.FilterMessage("journal flush failed").Len())

	j.fail = nil
	s.Update(dt)
	assert.Zero(t, s.Buffered())
	require.Len(t, j.entries, 3)
	assert.Equal(t, uint64(2), j.entries[0].Tick)
}

func TestCleanupDestroysReleasedActors(t *testing.T) {
	h := newHarness(t)
	id, ok := h.state.ActorOf(h.state.Cabin)
	require.True(t, ok)
	h.state.HouseFallen = true
	h.tick(1)
	assert.False(t, h.state.Actors.Alive(id))
	assert.Equal(t, 16+19-1, h.state.Actors.Pool().Live())
}
