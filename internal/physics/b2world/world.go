// Package b2world runs the scene on ByteArena/box2d as a side view: bodies
// live in the X/Y plane, each body keeps its own depth and out-of-plane
// rotation, and only rotation about Z is simulated.
package b2world

import (
	"math"
	"sort"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/physics"
)

type Options struct {
	Gravity            float64
	VelocityIterations int
	PositionIterations int
	// MaxReleaseSpeed caps the speed a follower gains from the impulse that
	// breaks its joint.
	MaxReleaseSpeed float64
}

func DefaultOptions() Options {
	return Options{
		Gravity:            9.81,
		VelocityIterations: 8,
		PositionIterations: 3,
		MaxReleaseSpeed:    20,
	}
}

type body struct {
	handle   physics.Handle
	desc     physics.BodyDesc
	b2       *box2d.B2Body
	depth    float64
	base     physics.Quat // rotation when angle == baseAngle
	baseAng  float64
	vel      physics.Vec3
	follower bool // welded to a leader and driven by the backend
	released bool
	plane    bool
}

// World implements physics.World on a box2d world.
type World struct {
	opts   Options
	log    *zap.Logger
	world  box2d.B2World
	bodies map[physics.Handle]*body
	joints []*weld
	byJID  map[physics.JointHandle]*weld
	next   uint64
	sink   physics.Sink
	events *listener
	// overlaps holds, per trigger body, the bodies it currently overlaps.
	overlaps map[physics.Handle]map[physics.Handle]bool
}

func New(opts Options, log *zap.Logger) *World {
	if opts.VelocityIterations <= 0 {
		opts.VelocityIterations = 8
	}
	if opts.PositionIterations <= 0 {
		opts.PositionIterations = 3
	}
	w := &World{
		opts:     opts,
		log:      log,
		world:    box2d.MakeB2World(box2d.MakeB2Vec2(0, -opts.Gravity)),
		bodies:   make(map[physics.Handle]*body),
		byJID:    make(map[physics.JointHandle]*weld),
		sink:     physics.NopSink{},
		events:   &listener{},
		overlaps: make(map[physics.Handle]map[physics.Handle]bool),
	}
	w.world.SetContactListener(w.events)
	return w
}

func (w *World) CreateBody(desc physics.BodyDesc) (physics.Handle, error) {
	for i, s := range desc.Shapes {
		if s.Geometry == nil {
			return 0, physics.ErrCookFailed
		}
		if m, ok := s.Geometry.(physics.ConvexMesh); ok && len(m.Points) < 4 {
			return 0, physics.ErrCookFailed
		}
		if _, ok := s.Geometry.(physics.Plane); ok && desc.Motion != physics.Static {
			w.log.Warn("plane on a non-static body", zap.String("body", desc.Name), zap.Int("shape", i))
		}
	}
	w.next++
	h := physics.Handle(w.next)
	w.bodies[h] = &body{handle: h, desc: desc}
	return h, nil
}

func (w *World) AddToScene(h physics.Handle) error {
	b, ok := w.bodies[h]
	if !ok || b.released {
		return physics.ErrUnknownHandle
	}
	if b.b2 != nil {
		return nil
	}
	bd := box2d.MakeB2BodyDef()
	bd.Type = bodyType(b.desc.Motion)
	if b.follower && b.desc.Motion == physics.Dynamic {
		bd.Type = box2d.B2BodyType.B2_kinematicBody
	}
	bd.Position = vec2(b.desc.Pose.P)
	bd.Angle = b.desc.Pose.PlanarAngle()
	bd.LinearVelocity = vec2(b.vel)
	b.depth = b.desc.Pose.P[2]
	b.base = b.desc.Pose.Q
	b.baseAng = bd.Angle
	b.b2 = w.world.CreateBody(&bd)
	b.b2.SetUserData(b)
	for _, s := range b.desc.Shapes {
		if _, ok := s.Geometry.(physics.Plane); ok {
			b.plane = true
		}
		w.attach(b, s)
	}
	if len(b.desc.Shapes) > 0 && b.desc.Shapes[0].Trigger {
		w.overlaps[h] = make(map[physics.Handle]bool)
	}
	return nil
}

func (w *World) RemoveFromScene(h physics.Handle) {
	b, ok := w.bodies[h]
	if !ok || b.released {
		return
	}
	if b.b2 != nil {
		w.world.DestroyBody(b.b2)
		b.b2 = nil
	}
	b.released = true
	delete(w.overlaps, h)
	for _, set := range w.overlaps {
		delete(set, h)
	}
	for _, j := range w.joints {
		if j.desc.A == h || j.desc.B == h {
			j.active = false
		}
	}
}

func (w *World) GlobalPose(h physics.Handle) (physics.Transform, bool) {
	b, ok := w.bodies[h]
	if !ok || b.released {
		return physics.Transform{}, false
	}
	return b.pose(), true
}

func (w *World) SetGlobalPose(h physics.Handle, pose physics.Transform) {
	b, ok := w.bodies[h]
	if !ok || b.released {
		return
	}
	if b.b2 == nil {
		b.desc.Pose = pose
		return
	}
	b.setPose(pose)
}

func (w *World) ApplyImpulse(h physics.Handle, impulse physics.Vec3) {
	b, ok := w.bodies[h]
	if !ok || b.released || b.b2 == nil {
		return
	}
	if b.follower {
		j := w.breakableWeldOf(h)
		if j == nil {
			return
		}
		j.accum += impulse.Len()
		if j.accum <= j.desc.BreakImpulse {
			return
		}
		w.breakWeld(j)
		impulse = w.clampRelease(b, impulse)
	}
	if b.b2.GetType() != box2d.B2BodyType.B2_dynamicBody {
		return
	}
	b.b2.ApplyLinearImpulseToCenter(vec2(impulse), true)
}

func (w *World) SetLinearVelocity(h physics.Handle, v physics.Vec3) {
	b, ok := w.bodies[h]
	if !ok || b.released {
		return
	}
	b.vel = v
	if b.b2 != nil {
		b.b2.SetLinearVelocity(vec2(v))
	}
}

func (w *World) Simulate(dt float64) {
	if dt <= 0 {
		return
	}
	w.world.Step(dt, w.opts.VelocityIterations, w.opts.PositionIterations)
	w.followWelds()
	w.scanTriggers()
	for _, n := range w.events.drain() {
		switch n := n.(type) {
		case physics.TriggerPair:
			w.sink.OnTrigger(n)
		case physics.ContactPair:
			w.sink.OnContact(n)
		}
	}
}

func (w *World) SetSink(s physics.Sink) {
	if s == nil {
		s = physics.NopSink{}
	}
	w.sink = s
}

func (w *World) Bodies(fn func(physics.Handle, physics.BodyView)) {
	handles := make([]physics.Handle, 0, len(w.bodies))
	for h, b := range w.bodies {
		if b.b2 != nil {
			handles = append(handles, h)
		}
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		b := w.bodies[h]
		fn(h, physics.BodyView{
			Name:   b.desc.Name,
			Motion: motionOf(b.b2.GetType()),
			Pose:   b.pose(),
			Shapes: b.desc.Shapes,
		})
	}
}

func (b *body) pose() physics.Transform {
	if b.b2 == nil {
		return b.desc.Pose
	}
	p := b.b2.GetPosition()
	q := physics.Rotated(physics.Vec3{}, b.b2.GetAngle()-b.baseAng, physics.AxisZ).Q
	return physics.Transform{P: physics.Vec3{p.X, p.Y, b.depth}, Q: q.Mul(b.base).Normalize()}
}

func (b *body) setPose(pose physics.Transform) {
	b.depth = pose.P[2]
	b.base = pose.Q
	b.baseAng = pose.PlanarAngle()
	b.b2.SetTransform(vec2(pose.P), b.baseAng)
}

func (w *World) clampRelease(b *body, impulse physics.Vec3) physics.Vec3 {
	mass := b.b2.GetMass()
	if mass <= 0 || w.opts.MaxReleaseSpeed <= 0 {
		return impulse
	}
	limit := mass * w.opts.MaxReleaseSpeed
	if l := impulse.Len(); l > limit {
		return impulse.Mul(limit / l)
	}
	return impulse
}

func vec2(v physics.Vec3) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v[0], v[1])
}

func bodyType(m physics.Motion) uint8 {
	switch m {
	case physics.Kinematic:
		return box2d.B2BodyType.B2_kinematicBody
	case physics.Dynamic:
		return box2d.B2BodyType.B2_dynamicBody
	}
	return box2d.B2BodyType.B2_staticBody
}

func motionOf(t uint8) physics.Motion {
	switch t {
	case box2d.B2BodyType.B2_kinematicBody:
		return physics.Kinematic
	case box2d.B2BodyType.B2_dynamicBody:
		return physics.Dynamic
	}
	return physics.Static
}

// depthOverlap reports whether two bodies share any depth, using their
// unrotated bounds.
func depthOverlap(a, b *body) bool {
	if a.plane || b.plane {
		return true
	}
	ca, ha := a.desc.Bounds()
	cb, hb := b.desc.Bounds()
	za, zb := a.depth+ca[2], b.depth+cb[2]
	return math.Abs(za-zb) <= ha[2]+hb[2]
}

var _ physics.World = (*World)(nil)
