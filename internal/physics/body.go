package physics

import "fmt"

// Motion is the capability marker of a body.
type Motion int

const (
	Static Motion = iota
	Kinematic
	Dynamic
)

func (m Motion) String() string {
	switch m {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("motion(%d)", int(m))
}

// Group is a collision filter category.
type Group uint32

const (
	GroupGround Group = 1 << iota
	GroupHouse
	GroupPlayer
	GroupTree
)

// Filter pairs a shape's own group with the groups it wants contact reports
// for.
type Filter struct {
	Group Group
	Mask  Group
}

// NotifyContact reports whether touches between shapes with these filters
// are delivered as contact notifications: each side's group must be in the
// other side's mask.
func NotifyContact(a, b Filter) bool {
	return a.Group&b.Mask != 0 && b.Group&a.Mask != 0
}

type Shape struct {
	Geometry Geometry
	Local    Transform
	Density  float64
	Trigger  bool
	Filter   Filter
	Color    Vec3
}

// NewShape returns a solid shape at the body origin.
func NewShape(g Geometry, density float64) Shape {
	return Shape{Geometry: g, Local: Identity(), Density: density}
}

type BodyDesc struct {
	Name   string
	Pose   Transform
	Motion Motion
	Shapes []Shape
}

// SetFilter applies f to every shape of the body.
func (d *BodyDesc) SetFilter(f Filter) {
	for i := range d.Shapes {
		d.Shapes[i].Filter = f
	}
}

// SetColor paints every shape, or only shape index when index >= 0.
func (d *BodyDesc) SetColor(c Vec3, index int) {
	if index >= 0 {
		if index < len(d.Shapes) {
			d.Shapes[index].Color = c
		}
		return
	}
	for i := range d.Shapes {
		d.Shapes[i].Color = c
	}
}

// Bounds returns the half extents of the union of the body's shapes in the
// body frame, ignoring shape rotation.
func (d BodyDesc) Bounds() (center, half Vec3) {
	if len(d.Shapes) == 0 {
		return Vec3{}, Vec3{}
	}
	var lo, hi Vec3
	for i, s := range d.Shapes {
		h := s.Geometry.HalfExtents()
		c := s.Local.P
		if m, ok := s.Geometry.(ConvexMesh); ok {
			c = c.Add(m.Center())
		}
		l, u := c.Sub(h), c.Add(h)
		if i == 0 {
			lo, hi = l, u
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], l[k])
			hi[k] = max(hi[k], u[k])
		}
	}
	return lo.Add(hi).Mul(0.5), hi.Sub(lo).Mul(0.5)
}
