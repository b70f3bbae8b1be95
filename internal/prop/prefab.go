// Package prop builds the scene's actors as prefabs: body and joint
// descriptions with literal offsets. Builders never touch a physics world;
// Spawn does.
package prop

import (
	"fmt"

	"github.com/woodcut/treehouse/internal/physics"
)

// Body names the scene logic looks for.
const (
	Player      = "player"
	TreeTrigger = "tree_trigger"
	House       = "house"
	Floor       = "floor"
	Stump       = "stump"
	Trunk       = "trunk"
	Canopy      = "canopy"
	Wall        = "wall"
	Roof        = "roof"
	Log         = "log"
	Pyramid     = "pyramid"
	Emitter     = "emitter"
	Particle    = "particle"
)

// JointSpec joins two bodies of the same prefab by index.
type JointSpec struct {
	Kind         physics.JointKind
	A, B         int
	LocalA       physics.Transform
	LocalB       physics.Transform
	BreakImpulse float64
	Limits       physics.Limits
}

type Prefab struct {
	Name   string
	Bodies []physics.BodyDesc
	Joints []JointSpec
}

func (p *Prefab) add(d physics.BodyDesc) int {
	p.Bodies = append(p.Bodies, d)
	return len(p.Bodies) - 1
}

func (p *Prefab) join(j JointSpec) int {
	p.Joints = append(p.Joints, j)
	return len(p.Joints) - 1
}

// attach joins j and moves body B to where the joint holds it relative to
// body A, so the prefab starts assembled on every backend.
func (p *Prefab) attach(j JointSpec) int {
	p.Bodies[j.B].Pose = p.Bodies[j.A].Pose.Mul(j.LocalA).Mul(j.LocalB.Inverse())
	return p.join(j)
}

// Spawned holds the handles of a spawned prefab, index-aligned with its
// bodies and joints.
type Spawned struct {
	Bodies []physics.Handle
	Joints []physics.JointHandle
}

// Root is the first body of the prefab.
func (s Spawned) Root() physics.Handle {
	if len(s.Bodies) == 0 {
		return 0
	}
	return s.Bodies[0]
}

// Spawn creates the prefab's bodies and joints and adds the bodies to the
// scene. On failure every body already added is removed again.
func Spawn(w physics.World, p Prefab) (Spawned, error) {
	var s Spawned
	fail := func(err error) (Spawned, error) {
		for _, h := range s.Bodies {
			w.RemoveFromScene(h)
		}
		return Spawned{}, fmt.Errorf("spawn %s: %w", p.Name, err)
	}
	for _, d := range p.Bodies {
		h, err := w.CreateBody(d)
		if err != nil {
			return fail(fmt.Errorf("body %s: %w", d.Name, err))
		}
		s.Bodies = append(s.Bodies, h)
	}
	for i, j := range p.Joints {
		if j.A < 0 || j.A >= len(s.Bodies) || j.B < 0 || j.B >= len(s.Bodies) {
			return fail(fmt.Errorf("joint %d: body index out of range", i))
		}
		jh, err := w.CreateJoint(physics.JointDesc{
			Kind:         j.Kind,
			A:            s.Bodies[j.A],
			B:            s.Bodies[j.B],
			LocalA:       j.LocalA,
			LocalB:       j.LocalB,
			BreakImpulse: j.BreakImpulse,
			Limits:       j.Limits,
		})
		if err != nil {
			return fail(fmt.Errorf("joint %d: %w", i, err))
		}
		s.Joints = append(s.Joints, jh)
	}
	for i, h := range s.Bodies {
		if err := w.AddToScene(h); err != nil {
			return fail(fmt.Errorf("add %s: %w", p.Bodies[i].Name, err))
		}
	}
	return s, nil
}

// Single wraps one body description as a prefab.
func Single(d physics.BodyDesc) Prefab {
	return Prefab{Name: d.Name, Bodies: []physics.BodyDesc{d}}
}

func rgb(r, g, b float64) physics.Vec3 {
	return physics.Vec3{r / 255, g / 255, b / 255}
}

func solid(name string, pose physics.Transform, motion physics.Motion, shapes ...physics.Shape) physics.BodyDesc {
	return physics.BodyDesc{Name: name, Pose: pose, Motion: motion, Shapes: shapes}
}

func shapeAt(g physics.Geometry, local physics.Transform, density float64) physics.Shape {
	s := physics.NewShape(g, density)
	s.Local = local
	return s
}
