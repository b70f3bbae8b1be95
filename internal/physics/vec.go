// Package physics is the boundary between the scene and the rigid-body
// engine. Scene code only ever sees handles, descriptions and notifications
// declared here; backends own the simulated state.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

// Transform is a rigid pose: rotation Q applied first, then translation P.
type Transform struct {
	P Vec3
	Q Quat
}

func Identity() Transform {
	return Transform{Q: mgl64.QuatIdent()}
}

// At returns an unrotated pose at (x, y, z).
func At(x, y, z float64) Transform {
	return Transform{P: Vec3{x, y, z}, Q: mgl64.QuatIdent()}
}

// Rotated returns an unrotated pose at p turned by angle radians about axis.
func Rotated(p Vec3, angle float64, axis Vec3) Transform {
	return Transform{P: p, Q: mgl64.QuatRotate(angle, axis)}
}

// Mul composes t with a pose expressed in t's local frame.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		P: t.P.Add(t.Q.Rotate(local.P)),
		Q: t.Q.Mul(local.Q).Normalize(),
	}
}

func (t Transform) Inverse() Transform {
	qi := t.Q.Inverse()
	return Transform{P: qi.Rotate(t.P.Mul(-1)), Q: qi}
}

// Translate returns t moved by d in world space.
func (t Transform) Translate(d Vec3) Transform {
	return Transform{P: t.P.Add(d), Q: t.Q}
}

// PlanarAngle is the rotation of t about the Z axis, measured from how the
// local X axis lands in the XY plane.
func (t Transform) PlanarAngle() float64 {
	x := t.Q.Rotate(AxisX)
	if math.Abs(x[0]) < 1e-12 && math.Abs(x[1]) < 1e-12 {
		return 0
	}
	return math.Atan2(x[1], x[0])
}

// Direction returns the unit vector from one point towards another, or the
// zero vector when the points coincide.
func Direction(from, to Vec3) Vec3 {
	d := to.Sub(from)
	l := d.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return d.Mul(1 / l)
}
