package system

import "time"

// Phase orders systems within a single tick.
type Phase int

const (
	PhaseInput    Phase = iota // deliver last tick's events, apply player commands
	PhaseUpdate                // collapse, cutting, effects
	PhaseSimulate              // advance the physics world
	PhaseOutput                // render + audio
	PhasePersist               // journal flush
	PhaseCleanup               // destroy queued actors

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseSimulate:
		return "simulate"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is implemented by every scene system.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
