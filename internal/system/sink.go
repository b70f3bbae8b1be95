package system

import (
	"github.com/woodcut/treehouse/internal/core/event"
	"github.com/woodcut/treehouse/internal/physics"
)

// BusSink turns physics notifications into bus events. Everything reported
// during a step is delivered at the start of the next tick, in step order.
type BusSink struct {
	Bus *event.Bus
}

func (s BusSink) OnTrigger(p physics.TriggerPair) {
	event.Emit(s.Bus, event.TriggerTouched{
		Volume:       p.Trigger,
		Other:        p.Other,
		Status:       p.Status,
		OtherIsPlane: p.OtherIsPlane,
	})
}

func (s BusSink) OnContact(p physics.ContactPair) {
	event.Emit(s.Bus, event.ContactReported{
		A:          p.A,
		B:          p.B,
		Status:     p.Status,
		MaxImpulse: p.MaxImpulse,
	})
}
