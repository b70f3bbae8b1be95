package prop

import (
	"fmt"
	"math"

	"github.com/woodcut/treehouse/internal/physics"
)

var (
	logBrown  = physics.Vec3{0.6, 0.34509803921568627, 0.16470588235294117}
	roofBrown = physics.Vec3{0.2627450980392157, 0.1568627450980392, 0.09411764705882353}
	grass     = rgb(39, 174, 96)
	sawdust   = physics.Vec3{0.6, 0.4, 0.2}
)

const (
	cabinHalfWidth = 1.5
	cabinHalfDepth = 1.0
	cabinCourses   = 8
	cabinLogRadius = 0.125
	cabinDensity   = 50
)

// Cabin is a dynamic log cabin named "house": stacked log courses on all four
// sides and a pitched roof of two boards.
func Cabin(pose physics.Transform) Prefab {
	var shapes []physics.Shape
	front := physics.Capsule{Radius: cabinLogRadius, HalfHeight: cabinHalfWidth}
	side := physics.Capsule{Radius: cabinLogRadius, HalfHeight: cabinHalfDepth}
	for k := 0; k < cabinCourses; k++ {
		y := cabinLogRadius + 2*cabinLogRadius*float64(k)
		shapes = append(shapes,
			shapeAt(front, physics.At(0, y, cabinHalfDepth), cabinDensity),
			shapeAt(front, physics.At(0, y, -cabinHalfDepth), cabinDensity),
			shapeAt(side, physics.Rotated(physics.Vec3{cabinHalfWidth, y, 0}, math.Pi/2, physics.AxisY), cabinDensity),
			shapeAt(side, physics.Rotated(physics.Vec3{-cabinHalfWidth, y, 0}, math.Pi/2, physics.AxisY), cabinDensity),
		)
	}
	top := 2 * cabinLogRadius * cabinCourses
	board := physics.Box{Half: physics.Vec3{cabinHalfWidth * 0.6, 0.05, cabinHalfDepth + 0.2}}
	shapes = append(shapes,
		shapeAt(board, physics.Rotated(physics.Vec3{-cabinHalfWidth / 2, top + 0.4, 0}, math.Pi/6, physics.AxisZ), cabinDensity),
		shapeAt(board, physics.Rotated(physics.Vec3{cabinHalfWidth / 2, top + 0.4, 0}, -math.Pi/6, physics.AxisZ), cabinDensity),
	)
	d := solid(House, pose, physics.Dynamic, shapes...)
	d.SetFilter(physics.Filter{Group: physics.GroupHouse, Mask: physics.GroupGround})
	d.SetColor(logBrown, -1)
	d.SetColor(roofBrown, len(shapes)-2)
	d.SetColor(roofBrown, len(shapes)-1)
	return Single(d)
}

// WallSegment is a short stack of four notched logs. Mirrored segments notch
// the other way so neighbours interlock.
func WallSegment(pose physics.Transform, mirrored bool) Prefab {
	sign := 1.0
	if mirrored {
		sign = -1
	}
	log := physics.Capsule{Radius: 0.1, HalfHeight: 0.15}
	var shapes []physics.Shape
	for k := 0; k < 4; k++ {
		dx := 0.05 * sign
		if k%2 == 1 {
			dx = -dx
		}
		shapes = append(shapes, shapeAt(log, physics.At(dx, 0.1+0.2*float64(k), 0), 1))
	}
	d := solid(Wall, pose, physics.Dynamic, shapes...)
	d.SetColor(logBrown, -1)
	return Single(d)
}

// RoofSegment is five boards side by side, tilted like a roof pitch.
func RoofSegment(pose physics.Transform, width float64) Prefab {
	if width <= 0 {
		width = 1
	}
	board := physics.Box{Half: physics.Vec3{width / 2, 0.025, 0.1}}
	var shapes []physics.Shape
	for k := 0; k < 5; k++ {
		z := -0.4 + 0.2*float64(k)
		shapes = append(shapes, shapeAt(board, physics.Rotated(physics.Vec3{0, 0, z}, math.Pi/8, physics.AxisZ), 1))
	}
	d := solid(Roof, pose, physics.Dynamic, shapes...)
	d.SetColor(roofBrown, -1)
	return Single(d)
}

// LogPrefab is an upright cooked cylinder. Cooking failure is returned; a
// log without collision geometry is not built.
func LogPrefab(pose physics.Transform, radius, halfHeight, density float64) (Prefab, error) {
	mesh, err := physics.CookCylinder(radius, halfHeight, 16)
	if err != nil {
		return Prefab{}, fmt.Errorf("log: %w", err)
	}
	d := solid(Log, pose, physics.Dynamic, physics.NewShape(mesh, density))
	d.SetColor(logBrown, -1)
	return Single(d), nil
}

// Ground is the static floor plane.
func Ground() Prefab {
	d := solid(Floor, physics.Identity(), physics.Static, physics.NewShape(physics.Plane{}, 0))
	d.SetFilter(physics.Filter{Group: physics.GroupGround, Mask: physics.GroupHouse})
	d.SetColor(grass, -1)
	return Single(d)
}

// EmitterBody is the kinematic marker the sawdust comes out of.
func EmitterBody(pose physics.Transform) Prefab {
	return Single(solid(Emitter, pose, physics.Kinematic,
		physics.NewShape(physics.Box{Half: physics.Vec3{0.01, 0.01, 0.01}}, 1)))
}

// ParticleBody is one grain of sawdust.
func ParticleBody(pose physics.Transform) Prefab {
	d := solid(Particle, pose, physics.Dynamic, physics.NewShape(physics.Sphere{Radius: 0.05}, 0.05))
	d.SetColor(sawdust, -1)
	return Single(d)
}
