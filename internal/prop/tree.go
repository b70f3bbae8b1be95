package prop

import (
	"fmt"
	"math/rand"

	"github.com/woodcut/treehouse/internal/physics"
)

var (
	bark   = rgb(94, 62, 35)
	leaves = rgb(46, 9, 39)
)

type TreeParams struct {
	Position      physics.Vec3
	Segments      int
	SegmentHeight float64
	StumpHeight   float64
	BaseRadius    float64
	TopRadius     float64
	Density       float64
	CanopySize    float64
	// BreakImpulse is the accumulated impulse the trunk base takes before it
	// snaps.
	BreakImpulse float64
	Color        physics.Vec3
}

func DefaultTreeParams() TreeParams {
	return TreeParams{
		Position:      physics.Vec3{10, 0, 0},
		Segments:      6,
		SegmentHeight: 1,
		StumpHeight:   0.5,
		BaseRadius:    0.35,
		TopRadius:     0.2,
		Density:       200,
		CanopySize:    1.5,
		BreakImpulse:  200000,
		Color:         bark,
	}
}

// TreePrefab is a tree with the indices the cutting logic needs.
type TreePrefab struct {
	Prefab
	// TrunkParts are body indices from the stump upwards.
	TrunkParts []int
	// TrunkBase is the joint index between the stump and the first segment.
	TrunkBase int
	Canopy    int
}

// Tree builds a tapering trunk of cooked cylinder segments standing on a
// static stump, with a pyramid canopy on top. The radius of each segment
// jitters by up to 5% using seed.
func Tree(params TreeParams, seed int64) (TreePrefab, error) {
	if params.Segments < 1 {
		return TreePrefab{}, fmt.Errorf("tree: %d segments", params.Segments)
	}
	rng := rand.New(rand.NewSource(seed))
	t := TreePrefab{Prefab: Prefab{Name: "tree"}}
	base := params.Position

	stump := solid(Stump, physics.At(base[0], base[1]+params.StumpHeight/2, base[2]), physics.Static,
		physics.NewShape(physics.Box{Half: physics.Vec3{params.BaseRadius * 1.2, params.StumpHeight / 2, params.BaseRadius * 1.2}}, 0))
	stump.SetColor(params.Color, -1)
	t.TrunkParts = append(t.TrunkParts, t.add(stump))

	half := params.SegmentHeight / 2
	for i := 0; i < params.Segments; i++ {
		f := 0.0
		if params.Segments > 1 {
			f = float64(i) / float64(params.Segments-1)
		}
		r := params.BaseRadius + (params.TopRadius-params.BaseRadius)*f
		r *= 1 + (rng.Float64()-0.5)*0.1
		mesh, err := physics.CookCylinder(r, half, 16)
		if err != nil {
			return TreePrefab{}, fmt.Errorf("tree segment %d: %w", i, err)
		}
		y := base[1] + params.StumpHeight + half + float64(i)*params.SegmentHeight
		seg := solid(Trunk, physics.At(base[0], y, base[2]), physics.Dynamic, physics.NewShape(mesh, params.Density))
		seg.SetColor(params.Color, -1)
		t.TrunkParts = append(t.TrunkParts, t.add(seg))
	}

	for i := 1; i < len(t.TrunkParts); i++ {
		below, above := t.TrunkParts[i-1], t.TrunkParts[i]
		drop := t.Bodies[above].Pose.P.Sub(t.Bodies[below].Pose.P)
		j := JointSpec{
			Kind:   physics.JointFixed,
			A:      below,
			B:      above,
			LocalA: physics.At(0, drop[1], 0),
			LocalB: physics.Identity(),
		}
		if i == 1 {
			j.BreakImpulse = params.BreakImpulse
			t.TrunkBase = t.join(j)
			continue
		}
		t.join(j)
	}

	top := t.TrunkParts[len(t.TrunkParts)-1]
	topPose := t.Bodies[top].Pose
	canopy, err := PyramidPrefab(topPose.Translate(physics.Vec3{0, half, 0}), params.CanopySize, params.Density/4)
	if err != nil {
		return TreePrefab{}, fmt.Errorf("tree canopy: %w", err)
	}
	cd := canopy.Bodies[0]
	cd.Name = Canopy
	cd.SetColor(leaves, -1)
	t.Canopy = t.add(cd)
	t.join(JointSpec{Kind: physics.JointFixed, A: top, B: t.Canopy, LocalA: physics.At(0, half, 0), LocalB: physics.Identity()})
	return t, nil
}

var pyramidVerts = []physics.Vec3{{0, 1, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}}

// PyramidPrefab is a dynamic square pyramid scaled by size.
func PyramidPrefab(pose physics.Transform, size, density float64) (Prefab, error) {
	pts := make([]physics.Vec3, len(pyramidVerts))
	for i, v := range pyramidVerts {
		pts[i] = v.Mul(size)
	}
	mesh, err := physics.Cook(pts)
	if err != nil {
		return Prefab{}, fmt.Errorf("pyramid: %w", err)
	}
	return Single(solid(Pyramid, pose, physics.Dynamic, physics.NewShape(mesh, density))), nil
}

// TreeTriggerPrefab is the kinematic cylinder volume around the cutting
// point.
func TreeTriggerPrefab(position physics.Vec3) (Prefab, error) {
	mesh, err := physics.CookCylinder(0.5, 0.2, 20)
	if err != nil {
		return Prefab{}, fmt.Errorf("tree trigger: %w", err)
	}
	s := physics.NewShape(mesh, 0)
	s.Trigger = true
	s.Filter = physics.Filter{Group: physics.GroupTree, Mask: physics.GroupPlayer}
	return Single(solid(TreeTrigger, physics.At(position[0], position[1], position[2]), physics.Kinematic, s)), nil
}
