package physics

import (
	"errors"
	"fmt"
	"math"
)

type GeometryKind int

const (
	KindBox GeometryKind = iota
	KindSphere
	KindCapsule
	KindPlane
	KindConvex
)

func (k GeometryKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindPlane:
		return "plane"
	case KindConvex:
		return "convex"
	}
	return "unknown"
}

// Geometry is a collision shape in its own local frame.
type Geometry interface {
	Kind() GeometryKind
	// HalfExtents bounds the geometry with an axis-aligned box.
	HalfExtents() Vec3
}

type Box struct {
	Half Vec3
}

func (Box) Kind() GeometryKind  { return KindBox }
func (b Box) HalfExtents() Vec3 { return b.Half }

type Sphere struct {
	Radius float64
}

func (Sphere) Kind() GeometryKind  { return KindSphere }
func (s Sphere) HalfExtents() Vec3 { return Vec3{s.Radius, s.Radius, s.Radius} }

// Capsule lies along its local X axis.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (Capsule) Kind() GeometryKind { return KindCapsule }
func (c Capsule) HalfExtents() Vec3 {
	return Vec3{c.HalfHeight + c.Radius, c.Radius, c.Radius}
}

// Plane is the infinite half-space below y = 0 of its local frame.
type Plane struct{}

func (Plane) Kind() GeometryKind { return KindPlane }
func (Plane) HalfExtents() Vec3 {
	return Vec3{math.Inf(1), 0, math.Inf(1)}
}

// ConvexMesh is a cooked point cloud.
type ConvexMesh struct {
	Points   []Vec3
	Min, Max Vec3
}

func (ConvexMesh) Kind() GeometryKind { return KindConvex }
func (m ConvexMesh) HalfExtents() Vec3 {
	return m.Max.Sub(m.Min).Mul(0.5)
}

// Center is the midpoint of the mesh bounds.
func (m ConvexMesh) Center() Vec3 {
	return m.Max.Add(m.Min).Mul(0.5)
}

var ErrCookFailed = errors.New("convex cooking failed")

const cookEpsilon = 1e-9

// Cook validates a point cloud as a convex hull source. It needs at least four
// points that do not all lie in one plane.
func Cook(points []Vec3) (ConvexMesh, error) {
	if len(points) < 4 {
		return ConvexMesh{}, fmt.Errorf("%w: %d points", ErrCookFailed, len(points))
	}
	if !spansVolume(points) {
		return ConvexMesh{}, fmt.Errorf("%w: points are coplanar", ErrCookFailed)
	}
	m := ConvexMesh{
		Points: append([]Vec3(nil), points...),
		Min:    points[0],
		Max:    points[0],
	}
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			m.Min[i] = math.Min(m.Min[i], p[i])
			m.Max[i] = math.Max(m.Max[i], p[i])
		}
	}
	return m, nil
}

func spansVolume(points []Vec3) bool {
	p0 := points[0]
	var p1 Vec3
	i := 1
	for ; i < len(points); i++ {
		if points[i].Sub(p0).Len() > cookEpsilon {
			p1 = points[i]
			break
		}
	}
	if i == len(points) {
		return false
	}
	edge := p1.Sub(p0)
	var normal Vec3
	for i++; i < len(points); i++ {
		n := edge.Cross(points[i].Sub(p0))
		if n.Len() > cookEpsilon {
			normal = n
			break
		}
	}
	if i >= len(points) {
		return false
	}
	for i++; i < len(points); i++ {
		if math.Abs(normal.Dot(points[i].Sub(p0))) > cookEpsilon {
			return true
		}
	}
	return false
}

// CylinderPoints returns a ring of slices vertices at -halfHeight and
// +halfHeight around the local Y axis, bottom then top for each slice.
func CylinderPoints(radius, halfHeight float64, slices int) []Vec3 {
	verts := make([]Vec3, 0, 2*slices)
	for i := 0; i < slices; i++ {
		angle := 2 * math.Pi * float64(i) / float64(slices)
		x := radius * math.Cos(angle)
		z := radius * math.Sin(angle)
		verts = append(verts, Vec3{x, -halfHeight, z}, Vec3{x, halfHeight, z})
	}
	return verts
}

// CookCylinder cooks a convex cylinder around the local Y axis.
func CookCylinder(radius, halfHeight float64, slices int) (ConvexMesh, error) {
	if radius <= 0 || halfHeight <= 0 {
		return ConvexMesh{}, fmt.Errorf("%w: cylinder r=%g h=%g", ErrCookFailed, radius, halfHeight)
	}
	return Cook(CylinderPoints(radius, halfHeight, slices))
}
