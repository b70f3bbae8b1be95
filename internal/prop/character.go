package prop

import (
	"math"

	"github.com/woodcut/treehouse/internal/physics"
)

var (
	shirt = rgb(40, 54, 24)
	skin  = rgb(221, 184, 146)
	jeans = rgb(3, 4, 94)
	boots = rgb(46, 49, 56)
)

// Proportions derives limb sizes from a total height, in head units.
type Proportions struct {
	Head        float64
	TorsoHeight float64
	TorsoWidth  float64
	LimbWidth   float64
	ArmLength   float64
	LegLength   float64
}

func ProportionsFor(height float64) Proportions {
	head := height / 8
	return Proportions{
		Head:        head,
		TorsoHeight: head * 3,
		TorsoWidth:  head * 1.5,
		LimbWidth:   head * 0.3,
		ArmLength:   head * 3,
		LegLength:   head * 4,
	}
}

// Character indices within its prefab.
const (
	CharTorso = iota
	CharLeftArm
	CharRightArm
	CharHead
	CharLeftLeg
	CharRightLeg
	CharLeftShin
	CharRightShin
)

// Character builds the player: a kinematic torso named "player" carrying
// arms on spherical joints, a fixed head and revolute hips and knees. Limbs
// start at their joint positions; hips are attached before knees.
func Character(height float64, position physics.Vec3) Prefab {
	pr := ProportionsFor(height)
	th := pr.TorsoHeight
	p := Prefab{Name: "character"}

	torso := solid(Player, physics.At(position[0], pr.LegLength+th/2+0.01, position[2]), physics.Kinematic,
		physics.NewShape(physics.Box{Half: physics.Vec3{th / 4, th / 2, th / 8}}, 1))
	torso.SetFilter(physics.Filter{Group: physics.GroupPlayer, Mask: physics.GroupGround | physics.GroupTree})
	torso.SetColor(shirt, -1)
	p.add(torso)

	arm := physics.Box{Half: physics.Vec3{th / 16, pr.ArmLength / 2, th / 16}}
	for _, name := range []string{"left_arm", "right_arm"} {
		d := solid(name, torso.Pose, physics.Dynamic, physics.NewShape(arm, 0.5))
		d.SetColor(shirt, -1)
		p.add(d)
	}

	head := solid("head", torso.Pose, physics.Dynamic, shapeAt(
		physics.Capsule{Radius: pr.Head / 1.5, HalfHeight: pr.Head / 3.5},
		physics.Rotated(physics.Vec3{}, math.Pi/2, physics.AxisZ), 1))
	head.SetColor(skin, -1)
	p.add(head)

	leg := physics.Box{Half: physics.Vec3{th / 9, pr.LegLength / 4, th / 9}}
	for _, name := range []string{"left_leg", "right_leg"} {
		d := solid(name, torso.Pose, physics.Dynamic, physics.NewShape(leg, 0.8))
		d.SetColor(jeans, -1)
		p.add(d)
	}
	for _, name := range []string{"left_shin", "right_shin"} {
		d := solid(name, torso.Pose, physics.Dynamic, physics.NewShape(leg, 0.8))
		d.SetColor(boots, -1)
		p.add(d)
	}

	off := 0.05 / th
	cone := physics.Limits{Enabled: true, Lower: math.Pi / 2, Upper: math.Pi / 4, Contact: 0.01}
	hip := physics.Limits{Enabled: true, Lower: -math.Pi / 2, Upper: math.Pi / 2, Contact: 0.01}
	knee := physics.Limits{Enabled: true, Lower: -math.Pi / 2, Upper: 0, Contact: 0.01}

	p.attach(JointSpec{Kind: physics.JointSpherical, A: CharTorso, B: CharLeftArm,
		LocalA: physics.At(th/4+off, th/2-off, 0), LocalB: physics.At(th/16, pr.ArmLength/2, 0), Limits: cone})
	p.attach(JointSpec{Kind: physics.JointSpherical, A: CharTorso, B: CharRightArm,
		LocalA: physics.At(-th/4-off, th/2-off, 0), LocalB: physics.At(-th/16, pr.ArmLength/2, 0), Limits: cone})
	p.attach(JointSpec{Kind: physics.JointFixed, A: CharTorso, B: CharHead,
		LocalA: physics.At(0, th/2, 0), LocalB: physics.Rotated(physics.Vec3{pr.Head, 0, 0}, math.Pi/2, physics.AxisZ)})
	p.attach(JointSpec{Kind: physics.JointRevolute, A: CharTorso, B: CharLeftLeg,
		LocalA: physics.At(th/8, -th/2, 0), LocalB: physics.At(0, pr.LegLength/4, 0), Limits: hip})
	p.attach(JointSpec{Kind: physics.JointRevolute, A: CharTorso, B: CharRightLeg,
		LocalA: physics.At(-th/8, -th/2, 0), LocalB: physics.At(0, pr.LegLength/4, 0), Limits: hip})
	p.attach(JointSpec{Kind: physics.JointRevolute, A: CharLeftLeg, B: CharLeftShin,
		LocalA: physics.At(0, -pr.LegLength/4, 0), LocalB: physics.At(0, pr.LegLength/4, 0), Limits: knee})
	p.attach(JointSpec{Kind: physics.JointRevolute, A: CharRightLeg, B: CharRightShin,
		LocalA: physics.At(0, -pr.LegLength/4, 0), LocalB: physics.At(0, pr.LegLength/4, 0), Limits: knee})
	return p
}
