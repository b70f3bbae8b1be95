package component

import "github.com/woodcut/treehouse/internal/physics"

// Body links an actor to its physics body.
// Pure data; systems do the mutating.
type Body struct {
	Handle physics.Handle
	Name   string
	Motion physics.Motion
}

// Sprite is how the terminal view draws an actor.
type Sprite struct {
	Glyph rune
	Color physics.Vec3
}

// Particle marks a sawdust grain owned by the active emitter.
type Particle struct {
	ID int
}

// Debris marks a piece spawned by the collapse, by layout index.
type Debris struct {
	Kind  string
	Index int
}
