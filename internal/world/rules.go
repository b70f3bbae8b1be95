package world

// Rules decide the two tunable numbers of the scene: how hard the chainsaw
// pushes and which contacts break the house.
type Rules interface {
	CutImpulse(elapsed float64) float64
	DamagingImpact(a, b string, impulse float64) bool
}

// DefaultRules is a linear push of Scale per second of cutting and any
// positive impulse counting as damage.
type DefaultRules struct {
	Scale float64
}

func (r DefaultRules) CutImpulse(elapsed float64) float64 {
	return r.Scale * elapsed
}

func (DefaultRules) DamagingImpact(_, _ string, impulse float64) bool {
	return impulse > 0
}
