package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/prop"
	"github.com/woodcut/treehouse/internal/world"
)

// TriggerMonitor turns trigger and contact notifications into the two scene
// flags. It only ever writes flags; the Update systems act on them.
// Phase 0 (Input).
type TriggerMonitor struct {
	state *world.State
	rules world.Rules
	log   *zap.Logger

	// releaseOnLost makes a lost touch clear the cutting flag. Off by
	// default: both found and lost set it.
	releaseOnLost bool

	inbox []any
}

func NewTriggerMonitor(bus *event.Bus, state *world.State, rules world.Rules, releaseOnLost bool, log *zap.Logger) *TriggerMonitor {
	m := &TriggerMonitor{state: state, rules: rules, releaseOnLost: releaseOnLost, log: log}
	event.Subscribe(bus, func(e event.TriggerTouched) { m.inbox = append(m.inbox, e) })
	event.Subscribe(bus, func(e event.ContactReported) { m.inbox = append(m.inbox, e) })
	return m
}

func (m *TriggerMonitor) Phase() coresys.Phase { return coresys.PhaseInput }

func (m *TriggerMonitor) Update(_ time.Duration) {
	for _, ev := range m.inbox {
		switch e := ev.(type) {
		case event.TriggerTouched:
			m.onTrigger(e)
		case event.ContactReported:
			m.onContact(e)
		}
	}
	clear(m.inbox)
	m.inbox = m.inbox[:0]
}

func (m *TriggerMonitor) onTrigger(e event.TriggerTouched) {
	if e.OtherIsPlane {
		return
	}
	if e.Volume != prop.TreeTrigger || e.Other != prop.Player {
		return
	}
	cutting := true
	if e.Status == physics.TouchLost && m.releaseOnLost {
		cutting = false
	}
	if cutting != m.state.ChainsawTriggered {
		m.log.Info("chainsaw trigger",
			zap.Stringer("status", e.Status),
			zap.Bool("cutting", cutting),
			zap.Uint64("tick", m.state.Tick))
	}
	m.state.ChainsawTriggered = cutting
}

func (m *TriggerMonitor) onContact(e event.ContactReported) {
	if e.Status != physics.TouchFound || m.state.HouseFallen {
		return
	}
	if !m.rules.DamagingImpact(e.A, e.B, e.MaxImpulse) {
		return
	}
	m.state.HouseFallen = true
	m.log.Info("damaging impact",
		zap.String("a", e.A),
		zap.String("b", e.B),
		zap.Float64("impulse", e.MaxImpulse),
		zap.Uint64("tick", m.state.Tick))
}
