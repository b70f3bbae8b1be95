// Package world holds the treehouse scene: the flags and handles the
// controller reads each tick, and the actor registry mirroring the bodies
// spawned into the physics world.
package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/woodcut/treehouse/internal/component"
	"github.com/woodcut/treehouse/internal/core/ecs"
	"github.com/woodcut/treehouse/internal/core/event"
	"github.com/woodcut/treehouse/internal/data"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/prop"
)

// CuttingSession is the chainsaw timer. Elapsed is in seconds.
type CuttingSession struct {
	Started      bool
	Elapsed      float64
	TotalImpulse float64
	Ticks        int
}

// DebrisPrefab is a cooked collapse piece placed relative to the cabin.
type DebrisPrefab struct {
	Piece  data.DebrisPiece
	Prefab prop.Prefab
}

// State is the scene as the controller sees it. It is owned by the tick
// goroutine and passed to every system explicitly.
type State struct {
	Tick uint64

	ChainsawTriggered bool
	HouseFallen       bool
	Collapsed         bool
	Cutting           CuttingSession
	Emitter           *effect.Emitter

	Player      physics.Handle
	PlayerParts []physics.Handle
	TrunkParts  []physics.Handle
	TrunkBase   physics.JointHandle
	Trigger     physics.Handle
	Cabin       physics.Handle
	CabinJoint  physics.JointHandle

	DebrisPrefabs []DebrisPrefab
	Debris        []ecs.ActorID

	EmitterAt  physics.Vec3
	PlayerStep float64

	Actors    *ecs.World
	Bodies    *ecs.Store[component.Body]
	Sprites   *ecs.Store[component.Sprite]
	Particles *ecs.Store[component.Particle]
	Pieces    *ecs.Store[component.Debris]
	byHandle  map[physics.Handle]ecs.ActorID
}

func NewState() *State {
	s := &State{
		PlayerStep: 0.5,
		Actors:     ecs.NewWorld(),
		Bodies:     ecs.NewStore[component.Body](),
		Sprites:    ecs.NewStore[component.Sprite](),
		Particles:  ecs.NewStore[component.Particle](),
		Pieces:     ecs.NewStore[component.Debris](),
		byHandle:   make(map[physics.Handle]ecs.ActorID),
	}
	s.Actors.Attach(s.Bodies, s.Sprites, s.Particles, s.Pieces)
	return s
}

var glyphs = map[string]rune{
	prop.Player:      '@',
	prop.Stump:       '#',
	prop.Trunk:       '#',
	prop.Canopy:      '^',
	prop.TreeTrigger: ':',
	prop.House:       'H',
	prop.Floor:       '=',
	prop.Wall:        '|',
	prop.Roof:        '/',
	prop.Log:         'o',
	prop.Pyramid:     'A',
	prop.Emitter:     '*',
	prop.Particle:    '.',
}

// Glyph returns the terminal glyph for a body name.
func Glyph(name string) rune {
	if g, ok := glyphs[name]; ok {
		return g
	}
	return '+'
}

// Track registers an actor for a body already in the scene.
func (s *State) Track(h physics.Handle, desc physics.BodyDesc) ecs.ActorID {
	id := s.Actors.CreateActor()
	s.Bodies.Set(id, &component.Body{Handle: h, Name: desc.Name, Motion: desc.Motion})
	var color physics.Vec3
	if len(desc.Shapes) > 0 {
		color = desc.Shapes[0].Color
	}
	s.Sprites.Set(id, &component.Sprite{Glyph: Glyph(desc.Name), Color: color})
	s.byHandle[h] = id
	return id
}

// Spawn adds a prefab to the world and tracks every body it creates.
func (s *State) Spawn(pw physics.World, p prop.Prefab) (prop.Spawned, []ecs.ActorID, error) {
	sp, err := prop.Spawn(pw, p)
	if err != nil {
		return prop.Spawned{}, nil, err
	}
	ids := make([]ecs.ActorID, len(sp.Bodies))
	for i, h := range sp.Bodies {
		ids[i] = s.Track(h, p.Bodies[i])
	}
	return sp, ids, nil
}

// ActorOf returns the actor tracking a body.
func (s *State) ActorOf(h physics.Handle) (ecs.ActorID, bool) {
	id, ok := s.byHandle[h]
	return id, ok
}

// Release removes a body from the scene and queues its actor for cleanup.
// Releasing an unknown or already released body is a no-op.
func (s *State) Release(pw physics.World, h physics.Handle) {
	pw.RemoveFromScene(h)
	if id, ok := s.byHandle[h]; ok {
		s.Actors.MarkForDestruction(id)
		delete(s.byHandle, h)
	}
}

// CutTarget is the trunk part the chainsaw pushes: the second part when
// there is one, otherwise the only one.
func (s *State) CutTarget() (physics.Handle, bool) {
	switch len(s.TrunkParts) {
	case 0:
		return 0, false
	case 1:
		return s.TrunkParts[0], true
	}
	return s.TrunkParts[1], true
}

// MovePlayer steps the kinematic player one unit in the given direction and
// turns it to face along X when moving sideways. It reports false when the
// player body is gone.
func (s *State) MovePlayer(pw physics.World, dir event.Direction) bool {
	pose, ok := pw.GlobalPose(s.Player)
	if !ok {
		return false
	}
	step := s.PlayerStep
	var delta physics.Vec3
	yaw := 0.0
	switch dir {
	case event.MoveLeft:
		delta, yaw = physics.Vec3{step, 0, 0}, -math.Pi/2
	case event.MoveRight:
		delta, yaw = physics.Vec3{-step, 0, 0}, math.Pi/2
	case event.MoveUp:
		delta = physics.Vec3{0, 0, -step}
	case event.MoveDown:
		delta = physics.Vec3{0, 0, step}
	default:
		return false
	}
	pw.SetGlobalPose(s.Player, physics.Rotated(pose.P.Add(delta), yaw, physics.AxisY))
	return true
}

// SpawnDebris places every cooked collapse piece at origin plus its offset.
// A piece that fails to spawn is skipped; the errors are returned together.
func (s *State) SpawnDebris(pw physics.World, origin physics.Vec3) (int, error) {
	var errs []error
	n := 0
	for i, dp := range s.DebrisPrefabs {
		p := dp.Prefab
		p.Bodies = append([]physics.BodyDesc(nil), dp.Prefab.Bodies...)
		for j := range p.Bodies {
			p.Bodies[j].Pose = p.Bodies[j].Pose.Translate(origin)
		}
		_, ids, err := s.Spawn(pw, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("debris[%d]: %w", i, err))
			continue
		}
		for _, id := range ids {
			s.Pieces.Set(id, &component.Debris{Kind: string(dp.Piece.Kind), Index: i})
			s.Debris = append(s.Debris, id)
		}
		n++
	}
	return n, errors.Join(errs...)
}
