package b2world

import (
	"sort"

	"github.com/ByteArena/box2d"

	"github.com/woodcut/treehouse/internal/physics"
)

// scanTriggers diffs each trigger's overlapping bodies against the previous
// step and queues found and lost notifications.
func (w *World) scanTriggers() {
	triggers := make([]physics.Handle, 0, len(w.overlaps))
	for h := range w.overlaps {
		triggers = append(triggers, h)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })

	for _, th := range triggers {
		t := w.bodies[th]
		now := w.overlapping(t)
		prev := w.overlaps[th]
		for _, oh := range sortedKeys(now) {
			if !prev[oh] {
				w.events.push(w.triggerPair(t, w.bodies[oh], physics.TouchFound))
			}
		}
		for _, oh := range sortedKeys(prev) {
			if !now[oh] {
				if o, ok := w.bodies[oh]; ok && !o.released {
					w.events.push(w.triggerPair(t, o, physics.TouchLost))
				}
			}
		}
		w.overlaps[th] = now
	}
}

func (w *World) overlapping(t *body) map[physics.Handle]bool {
	out := make(map[physics.Handle]bool)
	xfT := t.b2.GetTransform()
	for f := t.b2.GetFixtureList(); f != nil; f = f.GetNext() {
		if !f.IsSensor() {
			continue
		}
		tf := f
		w.world.QueryAABB(func(other *box2d.B2Fixture) bool {
			d, ok := other.GetUserData().(*fixtureData)
			if !ok || d.trigger || d.body == t || out[d.body.handle] {
				return true
			}
			if !depthOverlap(t, d.body) {
				return true
			}
			xfO := other.GetBody().GetTransform()
			if box2d.B2TestOverlapShapes(tf.GetShape(), 0, other.GetShape(), 0, xfT, xfO) {
				out[d.body.handle] = true
			}
			return true
		}, tf.GetAABB(0))
	}
	return out
}

func (w *World) triggerPair(t, o *body, status physics.TouchStatus) physics.TriggerPair {
	return physics.TriggerPair{
		Trigger:      t.desc.Name,
		Other:        o.desc.Name,
		Status:       status,
		OtherIsPlane: o.plane,
	}
}

func sortedKeys(m map[physics.Handle]bool) []physics.Handle {
	keys := make([]physics.Handle, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
