package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/woodcut/treehouse/internal/physics"
)

type DebrisKind string

const (
	DebrisWall DebrisKind = "wall"
	DebrisRoof DebrisKind = "roof"
	DebrisLog  DebrisKind = "log"
)

// DebrisPiece is one replacement actor spawned when the cabin collapses,
// placed at the cabin's last position plus Offset.
type DebrisPiece struct {
	Kind       DebrisKind   `yaml:"kind"`
	Offset     physics.Vec3 `yaml:"offset"`
	Mirrored   bool         `yaml:"mirrored"`    // wall
	Width      float64      `yaml:"width"`       // roof
	Radius     float64      `yaml:"radius"`      // log
	HalfHeight float64      `yaml:"half_height"` // log
	Density    float64      `yaml:"density"`     // log
	Color      physics.Vec3 `yaml:"color"`
}

// Debris is the ordered collapse layout.
type Debris struct {
	Pieces []DebrisPiece `yaml:"pieces"`
}

// Count returns the number of pieces of the given kind.
func (d *Debris) Count(kind DebrisKind) int {
	n := 0
	for _, p := range d.Pieces {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Debris) Validate() error {
	if len(d.Pieces) == 0 {
		return errors.New("debris: no pieces")
	}
	var errs []error
	for i, p := range d.Pieces {
		switch p.Kind {
		case DebrisWall:
		case DebrisRoof:
			if p.Width <= 0 {
				errs = append(errs, fmt.Errorf("debris[%d]: roof width must be positive", i))
			}
		case DebrisLog:
			if p.Radius <= 0 || p.HalfHeight <= 0 {
				errs = append(errs, fmt.Errorf("debris[%d]: log needs positive radius and half_height", i))
			}
			if p.Density <= 0 {
				errs = append(errs, fmt.Errorf("debris[%d]: log density must be positive", i))
			}
		default:
			errs = append(errs, fmt.Errorf("debris[%d]: unknown kind %q", i, p.Kind))
		}
	}
	return errors.Join(errs...)
}

var (
	lightWood = physics.Vec3{0.6, 0.34509803921568627, 0.16470588235294117}
	darkWood  = physics.Vec3{0.2627450980392157, 0.1568627450980392, 0.09411764705882353}
)

const (
	logRadius     = 0.1
	logHalfHeight = 3.0
	logDensity    = 300.0
	pieceSpacing  = 0.5
)

// DefaultDebris is the collapse layout of the stock cabin: six walls,
// three roof segments with three logs, then two wide roofs each paired with
// a shorter log.
func DefaultDebris() *Debris {
	d := &Debris{}
	at := func(slot int) physics.Vec3 { return physics.Vec3{float64(slot) * pieceSpacing, 0, 0} }
	for i := 0; i < 6; i++ {
		d.Pieces = append(d.Pieces, DebrisPiece{Kind: DebrisWall, Offset: at(i - 2), Mirrored: i%2 == 0, Color: lightWood})
	}
	for i := 0; i < 3; i++ {
		d.Pieces = append(d.Pieces,
			DebrisPiece{Kind: DebrisRoof, Offset: at(i + 2), Width: 1, Color: darkWood},
			DebrisPiece{Kind: DebrisLog, Offset: at(i + 7), Radius: logRadius, HalfHeight: logHalfHeight, Density: logDensity, Color: darkWood},
		)
	}
	for i := 1; i < 3; i++ {
		d.Pieces = append(d.Pieces,
			DebrisPiece{Kind: DebrisRoof, Offset: at(i - 5), Width: 2, Color: lightWood},
			DebrisPiece{Kind: DebrisLog, Offset: at(i - 5), Radius: logRadius, HalfHeight: logHalfHeight - 1, Density: logDensity, Color: lightWood},
		)
	}
	return d
}

// LoadDebris reads the collapse layout from YAML.
func LoadDebris(path string) (*Debris, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read debris: %w", err)
	}
	var d Debris
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse debris: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("debris %s: %w", path, err)
	}
	return &d, nil
}
