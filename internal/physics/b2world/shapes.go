package b2world

import (
	"math"
	"sort"

	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/physics"
)

// planeHalfWidth is how far a ground plane extends either side of its origin.
const planeHalfWidth = 1000

type fixtureData struct {
	body    *body
	filter  physics.Filter
	trigger bool
}

// attach converts one shape into box2d fixtures on b.
func (w *World) attach(b *body, s physics.Shape) {
	center := box2d.MakeB2Vec2(s.Local.P[0], s.Local.P[1])
	angle := s.Local.PlanarAngle()
	var shapes []box2d.B2ShapeInterface

	switch g := s.Geometry.(type) {
	case physics.Box:
		poly := box2d.MakeB2PolygonShape()
		poly.SetAsBoxFromCenterAndAngle(g.Half[0], g.Half[1], center, angle)
		shapes = append(shapes, &poly)
	case physics.Sphere:
		shapes = append(shapes, circle(center, g.Radius))
	case physics.Capsule:
		poly := box2d.MakeB2PolygonShape()
		poly.SetAsBoxFromCenterAndAngle(g.HalfHeight, g.Radius, center, angle)
		axis := box2d.MakeB2Vec2(math.Cos(angle)*g.HalfHeight, math.Sin(angle)*g.HalfHeight)
		shapes = append(shapes, &poly,
			circle(box2d.B2Vec2Add(center, axis), g.Radius),
			circle(box2d.B2Vec2Sub(center, axis), g.Radius))
	case physics.Plane:
		poly := box2d.MakeB2PolygonShape()
		down := box2d.MakeB2Vec2(math.Sin(angle), -math.Cos(angle))
		poly.SetAsBoxFromCenterAndAngle(planeHalfWidth, 1, box2d.B2Vec2Add(center, down), angle)
		shapes = append(shapes, &poly)
	case physics.ConvexMesh:
		shapes = append(shapes, w.convex(b, s.Local, g))
	}

	for _, shape := range shapes {
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = shape
		fd.Density = s.Density
		fd.Friction = 0.2
		fd.IsSensor = s.Trigger
		fd.UserData = &fixtureData{body: b, filter: s.Filter, trigger: s.Trigger}
		if s.Trigger {
			// Triggers are scanned after each step and never enter the solver.
			fd.Filter.CategoryBits = 0
			fd.Filter.MaskBits = 0
		}
		b.b2.CreateFixtureFromDef(&fd)
	}
}

func circle(center box2d.B2Vec2, r float64) *box2d.B2CircleShape {
	c := box2d.MakeB2CircleShape()
	c.M_radius = r
	c.M_p = center
	return &c
}

// convex projects a cooked mesh onto the X/Y plane and keeps at most
// B2_maxPolygonVertices points of its hull.
func (w *World) convex(b *body, local physics.Transform, m physics.ConvexMesh) box2d.B2ShapeInterface {
	pts := make([]box2d.B2Vec2, 0, len(m.Points))
	for _, p := range m.Points {
		q := local.P.Add(local.Q.Rotate(p))
		pts = append(pts, box2d.MakeB2Vec2(q[0], q[1]))
	}
	hull := hull2(pts)
	if len(hull) > box2d.B2_maxPolygonVertices {
		reduced := make([]box2d.B2Vec2, 0, box2d.B2_maxPolygonVertices)
		for i := 0; i < box2d.B2_maxPolygonVertices; i++ {
			reduced = append(reduced, hull[i*len(hull)/box2d.B2_maxPolygonVertices])
		}
		hull = reduced
	}
	poly := box2d.MakeB2PolygonShape()
	if len(hull) < 3 || area2(hull) < 1e-4 {
		w.log.Warn("convex mesh is flat in side view, using its bounds",
			zap.String("body", b.desc.Name))
		c, h := boundsOf(pts)
		poly.SetAsBoxFromCenterAndAngle(math.Max(h.X, 0.01), math.Max(h.Y, 0.01), c, 0)
		return &poly
	}
	poly.Set(hull, len(hull))
	return &poly
}

// hull2 is Andrew's monotone chain with collinear and near-duplicate points
// dropped. The result is counter-clockwise.
func hull2(in []box2d.B2Vec2) []box2d.B2Vec2 {
	const weld = 0.01
	pts := make([]box2d.B2Vec2, 0, len(in))
	for _, p := range in {
		dup := false
		for _, q := range pts {
			if math.Abs(p.X-q.X) < weld && math.Abs(p.Y-q.Y) < weld {
				dup = true
				break
			}
		}
		if !dup {
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return pts
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	cross := func(o, a, b box2d.B2Vec2) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	out := make([]box2d.B2Vec2, 0, 2*len(pts))
	for _, p := range pts {
		for len(out) >= 2 && cross(out[len(out)-2], out[len(out)-1], p) <= 1e-9 {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	lower := len(out) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(out) >= lower && cross(out[len(out)-2], out[len(out)-1], p) <= 1e-9 {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	return out[:len(out)-1]
}

func area2(poly []box2d.B2Vec2) float64 {
	a := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(a) / 2
}

func boundsOf(pts []box2d.B2Vec2) (center, half box2d.B2Vec2) {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return box2d.MakeB2Vec2((lo.X+hi.X)/2, (lo.Y+hi.Y)/2), box2d.MakeB2Vec2((hi.X-lo.X)/2, (hi.Y-lo.Y)/2)
}
