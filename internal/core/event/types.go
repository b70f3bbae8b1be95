package event

import (
	"github.com/woodcut/treehouse/internal/physics"
)

// TriggerTouched mirrors one trigger-volume notification from the physics step.
type TriggerTouched struct {
	Volume       string
	Other        string
	Status       physics.TouchStatus
	OtherIsPlane bool
}

// ContactReported mirrors one contact-pair notification from the physics step.
type ContactReported struct {
	A, B       string
	Status     physics.TouchStatus
	MaxImpulse float64
}

// Direction is a player movement command.
type Direction int

const (
	MoveLeft Direction = iota
	MoveRight
	MoveUp
	MoveDown
)

func (d Direction) String() string {
	switch d {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	}
	return "unknown"
}

type PlayerMoveRequested struct {
	Dir Direction
}

// Narrative events emitted by the scene controller.

type CuttingStarted struct {
	Tick uint64
}

type StopReason string

const (
	StopReleased    StopReason = "released"
	StopJointBroken StopReason = "joint_broken"
	StopNoTrunk     StopReason = "no_trunk"
)

type CuttingStopped struct {
	Tick         uint64
	Reason       StopReason
	Elapsed      float64
	TotalImpulse float64
}

type TrunkReleased struct {
	Tick    uint64
	Elapsed float64
}

type HouseCollapsed struct {
	Tick   uint64
	At     physics.Vec3
	Pieces int
}

type EmitterSpawned struct {
	Tick uint64
	At   physics.Vec3
}

type EmitterTornDown struct {
	Tick      uint64
	Emitted   int
	Remaining int
}
