package physics

type JointKind int

const (
	JointFixed JointKind = iota
	JointRevolute
	JointSpherical
)

func (k JointKind) String() string {
	switch k {
	case JointFixed:
		return "fixed"
	case JointRevolute:
		return "revolute"
	case JointSpherical:
		return "spherical"
	}
	return "unknown"
}

// Limits bounds a revolute twist (Lower..Upper) or a spherical cone
// (Lower = y angle, Upper = z angle).
type Limits struct {
	Enabled      bool
	Lower, Upper float64
	Contact      float64
}

// JointDesc constrains body B to body A. LocalA and LocalB are the joint
// frames in each body's space. A BreakImpulse of zero makes the joint
// unbreakable.
type JointDesc struct {
	Kind         JointKind
	A, B         Handle
	LocalA       Transform
	LocalB       Transform
	BreakImpulse float64
	Limits       Limits
}
