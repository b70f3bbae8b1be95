package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/woodcut/treehouse/internal/physics"
)

// Layout places the scene's props. Vectors are [x, y, z] in metres.
type Layout struct {
	Player        PlayerLayout `yaml:"player"`
	Tree          TreeLayout   `yaml:"tree"`
	Trigger       physics.Vec3 `yaml:"trigger"`
	Cabin         physics.Vec3 `yaml:"cabin"`
	CabinJoint    JointFrames  `yaml:"cabin_joint"`
	EmitterOffset physics.Vec3 `yaml:"emitter_offset"`
	// Palette colours the tree, in 0..1 RGB.
	Palette []physics.Vec3 `yaml:"palette"`
}

type PlayerLayout struct {
	Height float64      `yaml:"height"`
	Start  physics.Vec3 `yaml:"start"`
}

type TreeLayout struct {
	Position      physics.Vec3 `yaml:"position"`
	Segments      int          `yaml:"segments"`
	SegmentHeight float64      `yaml:"segment_height"`
	StumpHeight   float64      `yaml:"stump_height"`
	BaseRadius    float64      `yaml:"base_radius"`
	TopRadius     float64      `yaml:"top_radius"`
	Density       float64      `yaml:"density"`
	CanopySize    float64      `yaml:"canopy_size"`
}

// JointFrames are joint anchor offsets in each body's frame.
type JointFrames struct {
	LocalA physics.Vec3 `yaml:"local_a"`
	LocalB physics.Vec3 `yaml:"local_b"`
}

// EmitterAt is where sawdust comes out: the trigger position plus the
// emitter offset.
func (l *Layout) EmitterAt() physics.Vec3 {
	return l.Trigger.Add(l.EmitterOffset)
}

func (l *Layout) Validate() error {
	var errs []error
	if l.Player.Height <= 0 {
		errs = append(errs, fmt.Errorf("player.height must be positive, got %g", l.Player.Height))
	}
	if l.Tree.Segments < 1 {
		errs = append(errs, fmt.Errorf("tree.segments must be at least 1, got %d", l.Tree.Segments))
	}
	for name, v := range map[string]float64{
		"tree.segment_height": l.Tree.SegmentHeight,
		"tree.stump_height":   l.Tree.StumpHeight,
		"tree.base_radius":    l.Tree.BaseRadius,
		"tree.top_radius":     l.Tree.TopRadius,
		"tree.density":        l.Tree.Density,
		"tree.canopy_size":    l.Tree.CanopySize,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	if len(l.Palette) == 0 {
		errs = append(errs, errors.New("palette is empty"))
	}
	return errors.Join(errs...)
}

// DefaultLayout is the treehouse scene as built in code.
func DefaultLayout() *Layout {
	return &Layout{
		Player: PlayerLayout{Height: 1.75, Start: physics.Vec3{-2, 0, 0}},
		Tree: TreeLayout{
			Position:      physics.Vec3{10, 0, 0},
			Segments:      6,
			SegmentHeight: 1,
			StumpHeight:   0.5,
			BaseRadius:    0.35,
			TopRadius:     0.2,
			Density:       200,
			CanopySize:    1.5,
		},
		Trigger: physics.Vec3{9.85, 1, -0.04},
		Cabin:   physics.Vec3{10, 10, 0},
		CabinJoint: JointFrames{
			LocalA: physics.Vec3{5, 5, 0},
			LocalB: physics.Vec3{0, -1, 0},
		},
		EmitterOffset: physics.Vec3{0.15, 0, -0.46},
		Palette: []physics.Vec3{
			{46.0 / 255, 9.0 / 255, 39.0 / 255},
			{217.0 / 255, 0, 0},
			{1, 45.0 / 255, 0},
			{1, 140.0 / 255, 54.0 / 255},
			{4.0 / 255, 117.0 / 255, 111.0 / 255},
		},
	}
}

// LoadLayout reads a scene layout from YAML. Keys missing from the file keep
// their DefaultLayout value.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene layout: %w", err)
	}
	l := DefaultLayout()
	if err := yaml.Unmarshal(raw, l); err != nil {
		return nil, fmt.Errorf("parse scene layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("scene layout %s: %w", path, err)
	}
	return l, nil
}
