package physics

import "errors"

// Handle names a body owned by a World. The zero handle is never valid.
type Handle uint64

// JointHandle names a joint owned by a World.
type JointHandle uint64

var (
	ErrUnknownHandle = errors.New("unknown body handle")
	ErrUnknownJoint  = errors.New("unknown joint handle")
	ErrNotInScene    = errors.New("body is not in the scene")
)

// BodyView is a read-only snapshot used by renderers.
type BodyView struct {
	Name   string
	Motion Motion
	Pose   Transform
	Shapes []Shape
}

// World is the slice of a rigid-body engine the scene drives. All methods
// are called from the tick goroutine.
type World interface {
	// CreateBody builds a body that is not simulated until AddToScene.
	CreateBody(desc BodyDesc) (Handle, error)
	CreateJoint(desc JointDesc) (JointHandle, error)
	AddToScene(h Handle) error
	// RemoveFromScene releases the body; unknown handles are ignored.
	RemoveFromScene(h Handle)
	GlobalPose(h Handle) (Transform, bool)
	SetGlobalPose(h Handle, pose Transform)
	ApplyImpulse(h Handle, impulse Vec3)
	SetLinearVelocity(h Handle, v Vec3)
	ConstraintBroken(j JointHandle) bool
	Simulate(dt float64)
	SetSink(s Sink)
	// Bodies visits every body currently in the scene.
	Bodies(fn func(Handle, BodyView))
}
