package b2world

import (
	"github.com/ByteArena/box2d"

	"github.com/woodcut/treehouse/internal/physics"
)

// weld holds B at a fixed offset from A. Revolute and spherical joints are
// welded too; the side view has no use for their free axes.
type weld struct {
	id     physics.JointHandle
	desc   physics.JointDesc
	active bool
	broken bool
	accum  float64
}

func (w *World) CreateJoint(desc physics.JointDesc) (physics.JointHandle, error) {
	a, okA := w.bodies[desc.A]
	b, okB := w.bodies[desc.B]
	if !okA || !okB || a.released || b.released {
		return 0, physics.ErrUnknownHandle
	}
	w.next++
	j := &weld{id: physics.JointHandle(w.next), desc: desc, active: true}
	w.joints = append(w.joints, j)
	w.byJID[j.id] = j
	b.follower = true
	if b.b2 != nil && b.b2.GetType() == box2d.B2BodyType.B2_dynamicBody {
		b.b2.SetType(box2d.B2BodyType.B2_kinematicBody)
	}
	return j.id, nil
}

func (w *World) ConstraintBroken(id physics.JointHandle) bool {
	j, ok := w.byJID[id]
	return ok && j.broken
}

func (w *World) breakableWeldOf(h physics.Handle) *weld {
	for _, j := range w.joints {
		if j.active && j.desc.B == h && j.desc.BreakImpulse > 0 {
			return j
		}
	}
	return nil
}

// breakWeld marks j broken and frees its follower together with every body
// welded downstream of it.
func (w *World) breakWeld(j *weld) {
	j.broken = true
	queue := []physics.Handle{j.desc.B}
	j.active = false
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		b := w.bodies[h]
		b.follower = false
		if b.b2 != nil && b.desc.Motion == physics.Dynamic {
			b.b2.SetType(box2d.B2BodyType.B2_dynamicBody)
			b.b2.SetAwake(true)
		}
		for _, next := range w.joints {
			if next.active && next.desc.A == h {
				next.active = false
				queue = append(queue, next.desc.B)
			}
		}
	}
}

// followWelds re-poses every follower from its leader, in creation order so
// chains settle in one pass.
func (w *World) followWelds() {
	for _, j := range w.joints {
		if !j.active {
			continue
		}
		a, b := w.bodies[j.desc.A], w.bodies[j.desc.B]
		if a.b2 == nil || b.b2 == nil {
			continue
		}
		b.setPose(a.pose().Mul(j.desc.LocalA).Mul(j.desc.LocalB.Inverse()))
	}
}
