package b2world

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/physics"
)

const step = 1.0 / 60

type recorder struct {
	triggers []physics.TriggerPair
	contacts []physics.ContactPair
}

func (r *recorder) OnTrigger(p physics.TriggerPair) { r.triggers = append(r.triggers, p) }
func (r *recorder) OnContact(p physics.ContactPair) { r.contacts = append(r.contacts, p) }

func newWorld(t *testing.T) (*World, *recorder) {
	t.Helper()
	w := New(DefaultOptions(), zap.NewNop())
	rec := &recorder{}
	w.SetSink(rec)
	return w, rec
}

func spawn(t *testing.T, w *World, desc physics.BodyDesc) physics.Handle {
	t.Helper()
	h, err := w.CreateBody(desc)
	require.NoError(t, err)
	require.NoError(t, w.AddToScene(h))
	return h
}

func box(name string, motion physics.Motion, pose physics.Transform, half physics.Vec3) physics.BodyDesc {
	return physics.BodyDesc{
		Name:   name,
		Pose:   pose,
		Motion: motion,
		Shapes: []physics.Shape{physics.NewShape(physics.Box{Half: half}, 1)},
	}
}

func TestCrateLandsAndReportsContact(t *testing.T) {
	w, rec := newWorld(t)

	floor := physics.BodyDesc{Name: "floor", Pose: physics.Identity(), Motion: physics.Static,
		Shapes: []physics.Shape{physics.NewShape(physics.Plane{}, 0)}}
	floor.SetFilter(physics.Filter{Group: physics.GroupGround, Mask: physics.GroupHouse})
	spawn(t, w, floor)

	crate := box("crate", physics.Dynamic, physics.At(0, 3, 0), physics.Vec3{0.5, 0.5, 0.5})
	crate.SetFilter(physics.Filter{Group: physics.GroupHouse, Mask: physics.GroupGround})
	h := spawn(t, w, crate)

	for i := 0; i < 180; i++ {
		w.Simulate(step)
	}

	pose, ok := w.GlobalPose(h)
	require.True(t, ok)
	assert.InDelta(t, 0.5, pose.P[1], 0.05)

	require.NotEmpty(t, rec.contacts)
	first := rec.contacts[0]
	assert.Equal(t, physics.TouchFound, first.Status)
	assert.ElementsMatch(t, []string{"floor", "crate"}, []string{first.A, first.B})
	assert.Greater(t, first.MaxImpulse, 0.0)
	assert.Empty(t, rec.triggers)
}

func TestUnfilteredContactsAreSilent(t *testing.T) {
	w, rec := newWorld(t)
	spawn(t, w, physics.BodyDesc{Name: "floor", Pose: physics.Identity(), Motion: physics.Static,
		Shapes: []physics.Shape{physics.NewShape(physics.Plane{}, 0)}})
	spawn(t, w, box("crate", physics.Dynamic, physics.At(0, 1, 0), physics.Vec3{0.5, 0.5, 0.5}))

	for i := 0; i < 120; i++ {
		w.Simulate(step)
	}
	assert.Empty(t, rec.contacts)
}

func triggerDesc(t *testing.T, pose physics.Transform) physics.BodyDesc {
	t.Helper()
	mesh, err := physics.CookCylinder(0.5, 0.2, 20)
	require.NoError(t, err)
	s := physics.NewShape(mesh, 0)
	s.Trigger = true
	s.Filter = physics.Filter{Group: physics.GroupTree, Mask: physics.GroupPlayer}
	return physics.BodyDesc{Name: "tree_trigger", Pose: pose, Motion: physics.Kinematic, Shapes: []physics.Shape{s}}
}

func TestTriggerFoundAndLost(t *testing.T) {
	w, rec := newWorld(t)
	spawn(t, w, triggerDesc(t, physics.At(10, 1, 0)))
	player := spawn(t, w, box("player", physics.Kinematic, physics.At(0, 1, 0), physics.Vec3{0.2, 0.5, 0.2}))

	w.Simulate(step)
	assert.Empty(t, rec.triggers)

	w.SetGlobalPose(player, physics.At(10, 1, 0))
	w.Simulate(step)
	w.Simulate(step)
	require.Len(t, rec.triggers, 1)
	assert.Equal(t, physics.TriggerPair{Trigger: "tree_trigger", Other: "player", Status: physics.TouchFound}, rec.triggers[0])

	w.SetGlobalPose(player, physics.At(0, 1, 0))
	w.Simulate(step)
	require.Len(t, rec.triggers, 2)
	assert.Equal(t, physics.TouchLost, rec.triggers[1].Status)
}

func TestTriggerIgnoresOtherDepth(t *testing.T) {
	w, rec := newWorld(t)
	spawn(t, w, triggerDesc(t, physics.At(10, 1, 0)))
	spawn(t, w, box("player", physics.Kinematic, physics.At(10, 1, 5), physics.Vec3{0.2, 0.5, 0.2}))

	w.Simulate(step)
	assert.Empty(t, rec.triggers)
}

func TestWeldFollowsAndBreaks(t *testing.T) {
	w, _ := newWorld(t)
	leader := spawn(t, w, box("stump", physics.Static, physics.At(0, 0, 0), physics.Vec3{0.5, 0.5, 0.5}))
	followerDesc := box("trunk", physics.Dynamic, physics.At(0, 1, 0), physics.Vec3{0.5, 0.5, 0.5})
	follower, err := w.CreateBody(followerDesc)
	require.NoError(t, err)

	j, err := w.CreateJoint(physics.JointDesc{
		Kind:         physics.JointFixed,
		A:            leader,
		B:            follower,
		LocalA:       physics.At(0, 1, 0),
		LocalB:       physics.Identity(),
		BreakImpulse: 10,
	})
	require.NoError(t, err)
	require.NoError(t, w.AddToScene(follower))

	for i := 0; i < 30; i++ {
		w.Simulate(step)
	}
	pose, ok := w.GlobalPose(follower)
	require.True(t, ok)
	assert.InDelta(t, 1.0, pose.P[1], 1e-6)
	assert.InDelta(t, 0.0, pose.P[0], 1e-6)

	w.ApplyImpulse(follower, physics.Vec3{6, 0, 0})
	assert.False(t, w.ConstraintBroken(j))
	w.ApplyImpulse(follower, physics.Vec3{6, 0, 0})
	assert.True(t, w.ConstraintBroken(j))

	for i := 0; i < 10; i++ {
		w.Simulate(step)
	}
	pose, _ = w.GlobalPose(follower)
	assert.Greater(t, pose.P[0], 0.0)

	var motion physics.Motion
	w.Bodies(func(h physics.Handle, v physics.BodyView) {
		if h == follower {
			motion = v.Motion
		}
	})
	assert.Equal(t, physics.Dynamic, motion)
}

func TestBreakReleasesDownstreamWelds(t *testing.T) {
	w, _ := newWorld(t)
	stump := spawn(t, w, box("stump", physics.Static, physics.At(0, 0, 0), physics.Vec3{0.5, 0.5, 0.5}))
	mid, _ := w.CreateBody(box("mid", physics.Dynamic, physics.At(0, 1, 0), physics.Vec3{0.5, 0.5, 0.5}))
	top, _ := w.CreateBody(box("top", physics.Dynamic, physics.At(0, 2, 0), physics.Vec3{0.5, 0.5, 0.5}))
	base, err := w.CreateJoint(physics.JointDesc{A: stump, B: mid, LocalA: physics.At(0, 1, 0), LocalB: physics.Identity(), BreakImpulse: 1})
	require.NoError(t, err)
	upper, err := w.CreateJoint(physics.JointDesc{A: mid, B: top, LocalA: physics.At(0, 1, 0), LocalB: physics.Identity()})
	require.NoError(t, err)
	require.NoError(t, w.AddToScene(mid))
	require.NoError(t, w.AddToScene(top))

	w.ApplyImpulse(mid, physics.Vec3{5, 0, 0})
	assert.True(t, w.ConstraintBroken(base))
	assert.False(t, w.ConstraintBroken(upper))

	motions := map[string]physics.Motion{}
	w.Bodies(func(_ physics.Handle, v physics.BodyView) { motions[v.Name] = v.Motion })
	assert.Equal(t, physics.Dynamic, motions["mid"])
	assert.Equal(t, physics.Dynamic, motions["top"])
	assert.Equal(t, physics.Static, motions["stump"])
}

func TestPoseKeepsDepthAndYaw(t *testing.T) {
	w, _ := newWorld(t)
	pose := physics.Rotated(physics.Vec3{1, 2, 3}, math.Pi/2, physics.AxisY)
	h := spawn(t, w, box("wall", physics.Static, pose, physics.Vec3{0.5, 0.5, 0.5}))

	got, ok := w.GlobalPose(h)
	require.True(t, ok)
	assert.InDelta(t, 1.0, got.P[0], 1e-9)
	assert.InDelta(t, 2.0, got.P[1], 1e-9)
	assert.InDelta(t, 3.0, got.P[2], 1e-9)
	assert.InDelta(t, pose.Q.W, got.Q.W, 1e-9)
	assert.InDelta(t, pose.Q.V[1], got.Q.V[1], 1e-9)
}

func TestRemovedBodiesAreNull(t *testing.T) {
	w, _ := newWorld(t)
	h := spawn(t, w, box("emitter", physics.Kinematic, physics.At(0, 1, 0), physics.Vec3{0.01, 0.01, 0.01}))

	w.RemoveFromScene(h)
	w.RemoveFromScene(h)
	w.RemoveFromScene(physics.Handle(999))

	_, ok := w.GlobalPose(h)
	assert.False(t, ok)
	assert.ErrorIs(t, w.AddToScene(h), physics.ErrUnknownHandle)

	count := 0
	w.Bodies(func(physics.Handle, physics.BodyView) { count++ })
	assert.Zero(t, count)
}

func TestCreateBodyRejectsUncookedMesh(t *testing.T) {
	w, _ := newWorld(t)
	_, err := w.CreateBody(physics.BodyDesc{Name: "log", Shapes: []physics.Shape{
		physics.NewShape(physics.ConvexMesh{}, 1),
	}})
	assert.ErrorIs(t, err, physics.ErrCookFailed)
}

func TestHullDropsInteriorAndDuplicates(t *testing.T) {
	pts := []box2d.B2Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 0.5, Y: 0.5}, {X: 1, Y: 1}, {X: 0.5, Y: 0},
	}
	hull := hull2(pts)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 1.0, area2(hull), 1e-9)
}
