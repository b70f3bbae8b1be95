package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/data"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/prop"
)

type Options struct {
	Seed         int64
	BreakImpulse float64 // 0 keeps the tree default
	PlayerStep   float64 // 0 keeps 0.5
}

// Build spawns the scene into pw: ground, player, tree, cutting trigger and
// the cabin welded to the top of the trunk. Debris pieces are cooked up
// front so a bad collapse layout fails here rather than mid-scene.
func Build(pw physics.World, layout *data.Layout, debris *data.Debris, opts Options, log *zap.Logger) (*State, error) {
	s := NewState()
	if opts.PlayerStep > 0 {
		s.PlayerStep = opts.PlayerStep
	}
	s.EmitterAt = layout.EmitterAt()

	for i, piece := range debris.Pieces {
		p, err := debrisPrefab(piece)
		if err != nil {
			return nil, fmt.Errorf("debris[%d]: %w", i, err)
		}
		s.DebrisPrefabs = append(s.DebrisPrefabs, DebrisPrefab{Piece: piece, Prefab: p})
	}

	if _, _, err := s.Spawn(pw, prop.Ground()); err != nil {
		return nil, err
	}

	character, _, err := s.Spawn(pw, prop.Character(layout.Player.Height, layout.Player.Start))
	if err != nil {
		return nil, err
	}
	s.Player = character.Root()
	s.PlayerParts = character.Bodies

	params := prop.DefaultTreeParams()
	params.Position = layout.Tree.Position
	params.Segments = layout.Tree.Segments
	params.SegmentHeight = layout.Tree.SegmentHeight
	params.StumpHeight = layout.Tree.StumpHeight
	params.BaseRadius = layout.Tree.BaseRadius
	params.TopRadius = layout.Tree.TopRadius
	params.Density = layout.Tree.Density
	params.CanopySize = layout.Tree.CanopySize
	if len(layout.Palette) > 0 {
		params.Color = layout.Palette[0]
	}
	if opts.BreakImpulse > 0 {
		params.BreakImpulse = opts.BreakImpulse
	}
	tree, err := prop.Tree(params, opts.Seed)
	if err != nil {
		return nil, err
	}
	spawned, _, err := s.Spawn(pw, tree.Prefab)
	if err != nil {
		return nil, err
	}
	for _, i := range tree.TrunkParts {
		s.TrunkParts = append(s.TrunkParts, spawned.Bodies[i])
	}
	s.TrunkBase = spawned.Joints[tree.TrunkBase]

	trigger, err := prop.TreeTriggerPrefab(layout.Trigger)
	if err != nil {
		return nil, err
	}
	spawned, _, err = s.Spawn(pw, trigger)
	if err != nil {
		return nil, err
	}
	s.Trigger = spawned.Root()

	c := layout.Cabin
	spawned, _, err = s.Spawn(pw, prop.Cabin(physics.At(c[0], c[1], c[2])))
	if err != nil {
		return nil, err
	}
	s.Cabin = spawned.Root()

	a, b := layout.CabinJoint.LocalA, layout.CabinJoint.LocalB
	s.CabinJoint, err = pw.CreateJoint(physics.JointDesc{
		Kind:   physics.JointFixed,
		A:      s.TrunkParts[len(s.TrunkParts)-1],
		B:      s.Cabin,
		LocalA: physics.At(a[0], a[1], a[2]),
		LocalB: physics.At(b[0], b[1], b[2]),
	})
	if err != nil {
		return nil, fmt.Errorf("cabin joint: %w", err)
	}

	log.Info("scene built",
		zap.Int("actors", s.Actors.Pool().Live()),
		zap.Int("trunk_parts", len(s.TrunkParts)),
		zap.Int("debris_pieces", len(s.DebrisPrefabs)),
		zap.Int64("seed", opts.Seed))
	return s, nil
}

func debrisPrefab(piece data.DebrisPiece) (prop.Prefab, error) {
	pose := physics.At(piece.Offset[0], piece.Offset[1], piece.Offset[2])
	var p prop.Prefab
	switch piece.Kind {
	case data.DebrisWall:
		p = prop.WallSegment(pose, piece.Mirrored)
	case data.DebrisRoof:
		p = prop.RoofSegment(pose, piece.Width)
	case data.DebrisLog:
		var err error
		if p, err = prop.LogPrefab(pose, piece.Radius, piece.HalfHeight, piece.Density); err != nil {
			return prop.Prefab{}, err
		}
	default:
		return prop.Prefab{}, fmt.Errorf("unknown kind %q", piece.Kind)
	}
	if piece.Color != (physics.Vec3{}) {
		for i := range p.Bodies {
			p.Bodies[i].SetColor(piece.Color, -1)
		}
	}
	return p, nil
}
