package system

import (
	"fmt"
	"time"
)

// Runner executes systems phase by phase each tick. Systems sharing a phase
// run in the order they were registered.
type Runner struct {
	phases [phaseCount][]System
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register panics on a phase outside the known range; that is a wiring bug,
// not a runtime condition.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system %T registered with unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

func (r *Runner) Tick(dt time.Duration) {
	for _, systems := range r.phases {
		for _, s := range systems {
			s.Update(dt)
		}
	}
	r.ticks++
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Len returns the number of registered systems in a phase.
func (r *Runner) Len(p Phase) int {
	if p < 0 || p >= phaseCount {
		return 0
	}
	return len(r.phases[p])
}
