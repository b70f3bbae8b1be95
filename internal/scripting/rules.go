package scripting

// SceneRules adapts the engine to the scene's rule interface, fixing the
// impulse scale from configuration.
type SceneRules struct {
	Engine *Engine
	Scale  float64
	ticks  int
}

func (r *SceneRules) CutImpulse(elapsed float64) float64 {
	r.ticks++
	return r.Engine.CutImpulse(CutContext{Elapsed: elapsed, Scale: r.Scale, Tick: r.ticks})
}

func (r *SceneRules) DamagingImpact(a, b string, impulse float64) bool {
	return r.Engine.DamagingImpact(ImpactContext{A: a, B: b, Impulse: impulse})
}
