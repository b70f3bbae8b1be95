// Package physicstest provides an in-memory physics.World that records every
// request the scene makes, for use in tests.
package physicstest

import (
	"fmt"
	"sort"

	"github.com/woodcut/treehouse/internal/physics"
)

type Body struct {
	Desc     physics.BodyDesc
	Pose     physics.Transform
	Velocity physics.Vec3
	InScene  bool
	Released bool
	Impulses []physics.Vec3
}

type Joint struct {
	Desc   physics.JointDesc
	Broken bool
}

// World records scene requests. Simulate advances nothing except the step
// counter and flushes notifications queued with Trigger and Contact.
type World struct {
	bodies  map[physics.Handle]*Body
	joints  map[physics.JointHandle]*Joint
	next    uint64
	sink    physics.Sink
	pending []any
	Steps   int
	Added   []physics.Handle
	Removed []physics.Handle
	// FailCreate makes CreateBody fail for descriptions with this name.
	FailCreate string
}

func New() *World {
	return &World{
		bodies: make(map[physics.Handle]*Body),
		joints: make(map[physics.JointHandle]*Joint),
		sink:   physics.NopSink{},
	}
}

func (w *World) CreateBody(desc physics.BodyDesc) (physics.Handle, error) {
	if w.FailCreate != "" && desc.Name == w.FailCreate {
		return 0, fmt.Errorf("create %s: %w", desc.Name, physics.ErrCookFailed)
	}
	w.next++
	h := physics.Handle(w.next)
	w.bodies[h] = &Body{Desc: desc, Pose: desc.Pose}
	return h, nil
}

func (w *World) CreateJoint(desc physics.JointDesc) (physics.JointHandle, error) {
	if _, ok := w.bodies[desc.A]; !ok {
		return 0, physics.ErrUnknownHandle
	}
	if _, ok := w.bodies[desc.B]; !ok {
		return 0, physics.ErrUnknownHandle
	}
	w.next++
	j := physics.JointHandle(w.next)
	w.joints[j] = &Joint{Desc: desc}
	return j, nil
}

func (w *World) AddToScene(h physics.Handle) error {
	b, ok := w.bodies[h]
	if !ok || b.Released {
		return physics.ErrUnknownHandle
	}
	b.InScene = true
	w.Added = append(w.Added, h)
	return nil
}

func (w *World) RemoveFromScene(h physics.Handle) {
	b, ok := w.bodies[h]
	if !ok || b.Released {
		return
	}
	b.InScene = false
	b.Released = true
	w.Removed = append(w.Removed, h)
}

func (w *World) GlobalPose(h physics.Handle) (physics.Transform, bool) {
	b, ok := w.bodies[h]
	if !ok || b.Released {
		return physics.Transform{}, false
	}
	return b.Pose, true
}

func (w *World) SetGlobalPose(h physics.Handle, pose physics.Transform) {
	if b, ok := w.bodies[h]; ok && !b.Released {
		b.Pose = pose
	}
}

func (w *World) ApplyImpulse(h physics.Handle, impulse physics.Vec3) {
	if b, ok := w.bodies[h]; ok && !b.Released {
		b.Impulses = append(b.Impulses, impulse)
	}
}

func (w *World) SetLinearVelocity(h physics.Handle, v physics.Vec3) {
	if b, ok := w.bodies[h]; ok && !b.Released {
		b.Velocity = v
	}
}

func (w *World) ConstraintBroken(j physics.JointHandle) bool {
	jt, ok := w.joints[j]
	return ok && jt.Broken
}

func (w *World) Simulate(float64) {
	w.Steps++
	pending := w.pending
	w.pending = nil
	for _, n := range pending {
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
		if b.InScene {
			handles = append(handles, h)
		}
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		b := w.bodies[h]
		fn(h, physics.BodyView{Name: b.Desc.Name, Motion: b.Desc.Motion, Pose: b.Pose, Shapes: b.Desc.Shapes})
	}
}

// Test helpers.

// Body returns the record for h, or nil.
func (w *World) Body(h physics.Handle) *Body {
	return w.bodies[h]
}

// Joint returns the record for j, or nil.
func (w *World) Joint(j physics.JointHandle) *Joint {
	return w.joints[j]
}

// Break marks a joint broken.
func (w *World) Break(j physics.JointHandle) {
	if jt, ok := w.joints[j]; ok {
		jt.Broken = true
	}
}

// Forget drops a body entirely so later lookups behave like a null handle.
func (w *World) Forget(h physics.Handle) {
	delete(w.bodies, h)
}

// Trigger queues a trigger notification for the next Simulate.
func (w *World) Trigger(p physics.TriggerPair) {
	w.pending = append(w.pending, p)
}

// Contact queues a contact notification for the next Simulate.
func (w *World) Contact(p physics.ContactPair) {
	w.pending = append(w.pending, p)
}

// InScene counts bodies currently in the scene, optionally only those with
// the given name.
func (w *World) InScene(name string) int {
	n := 0
	for _, b := range w.bodies {
		if b.InScene && (name == "" || b.Desc.Name == name) {
			n++
		}
	}
	return n
}

// FindByName returns the handles of bodies with the given name that are in
// the scene, in creation order.
func (w *World) FindByName(name string) []physics.Handle {
	var out []physics.Handle
	w.Bodies(func(h physics.Handle, v physics.BodyView) {
		if v.Name == name {
			out = append(out, h)
		}
	})
	return out
}

var _ physics.World = (*World)(nil)
