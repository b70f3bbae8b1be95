// Package effect implements the sawdust emitter: a point that sprays short
// lived particles in a forward cone.
package effect

import "github.com/woodcut/treehouse/internal/physics"

type Particle struct {
	ID       int
	Pose     physics.Transform
	Velocity physics.Vec3
	LifeSpan float64
	// InScene is set once the particle's body has been added to the world.
	InScene bool
	Handle  physics.Handle
	decay   float64
}

// Age shortens the particle's life by one step.
func (p *Particle) Age() {
	p.LifeSpan -= p.decay
}

func (p *Particle) Dead() bool {
	return p.LifeSpan < 0
}
