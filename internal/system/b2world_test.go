package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/data"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/physics/b2world"
	"github.com/woodcut/treehouse/internal/prop"
	"github.com/woodcut/treehouse/internal/world"
)

// TestSceneOnBox2D plays the whole scene on the box2d backend: the player
// walks into the trigger, the cut breaks the trunk's base, the cabin lands
// and comes apart.
func TestSceneOnBox2D(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	layout := data.DefaultLayout()
	pw := b2world.New(b2world.DefaultOptions(), log)
	const step = 0.25
	st, err := world.Build(pw, layout, data.DefaultDebris(), world.Options{Seed: 1, PlayerStep: step}, log)
	require.NoError(t, err)

	bus := event.NewBus()
	runner := coresys.NewRunner()
	_, err = RegisterScene(runner, Deps{
		Bus:     bus,
		State:   st,
		Physics: pw,
		Rules:   world.DefaultRules{Scale: scale},
		Effects: effect.DefaultConfig(),
		Log:     log,
	})
	require.NoError(t, err)

	var (
		stops     []event.CuttingStopped
		releases  []event.TrunkReleased
		collapses []event.HouseCollapsed
	)
	event.Subscribe(bus, func(e event.CuttingStopped) { stops = append(stops, e) })
	event.Subscribe(bus, func(e event.TrunkReleased) { releases = append(releases, e) })
	event.Subscribe(bus, func(e event.HouseCollapsed) { collapses = append(collapses, e) })

	// The torso overlaps the trigger this far along while the head and arms
	// stay clear of the trunk.
	stop := layout.Tree.Position[0] - 0.75
	playerX := func() float64 {
		pose, ok := pw.GlobalPose(st.Player)
		require.True(t, ok)
		return pose.P[0]
	}

	for i := 0; i < 100 && !st.ChainsawTriggered; i++ {
		if playerX()+step <= stop+1e-9 {
			event.Emit(bus, event.PlayerMoveRequested{Dir: event.MoveLeft})
		}
		runner.Tick(dt)
	}
	require.True(t, st.ChainsawTriggered, "player at x=%.2f never reached the trigger", playerX())
	assert.InDelta(t, stop, playerX(), 1e-9)

	for i := 0; i < 1200 && !st.Collapsed; i++ {
		runner.Tick(dt)
	}
	require.True(t, st.Collapsed, "scene did not collapse by tick %d", st.Tick)
	assert.True(t, st.HouseFallen)

	require.Len(t, releases, 1)
	require.NotEmpty(t, stops)
	assert.Equal(t, event.StopJointBroken, stops[len(stops)-1].Reason)

	// The collapse event is dispatched a tick after it is emitted.
	runner.Tick(dt)
	require.Len(t, collapses, 1)
	assert.Less(t, releases[0].Tick, collapses[0].Tick, "the cabin only falls once the trunk is free")
	assert.Equal(t, 16, collapses[0].Pieces)

	counts := map[string]int{}
	pw.Bodies(func(_ physics.Handle, b physics.BodyView) { counts[b.Name]++ })
	assert.Zero(t, counts[prop.House], "the cabin is replaced by its debris")
	assert.Equal(t, 6, counts[prop.Wall])
	assert.Equal(t, 5, counts[prop.Roof])
	assert.Equal(t, 5, counts[prop.Log])

	for i := 0; i < 60; i++ {
		runner.Tick(dt)
	}
	assert.Len(t, collapses, 1, "collapse happens once")
	assert.Equal(t, 1, logs.FilterMessage("damaging impact").Len())
}
