package effect

import (
	"math"
	"math/rand"

	"github.com/woodcut/treehouse/internal/physics"
)

type Config struct {
	Rate         float64 // particles per second of accumulated emit time
	MaxParticles int     // total ever emitted
	LifeSpan     float64
	Decay        float64 // life lost per update
	Spread       float64 // cone half angle, radians
}

func DefaultConfig() Config {
	return Config{
		Rate:         0.5,
		MaxParticles: 500,
		LifeSpan:     100,
		Decay:        2,
		Spread:       math.Pi / 6,
	}
}

// baseDirection points slightly up and forward.
var baseDirection = physics.Vec3{0, 0.3, 1}.Normalize()

// Emitter owns its particles. Live particles age every update; a particle
// moves to the dead set on the first update that leaves it dead and is never
// touched again.
type Emitter struct {
	cfg       Config
	pose      physics.Transform
	rng       *rand.Rand
	live      []*Particle
	dead      []*Particle
	emitted   int
	sinceEmit float64
	// Handle is the emitter's own body once it is in the scene.
	Handle physics.Handle
}

func NewEmitter(pose physics.Transform, cfg Config, rng *rand.Rand) *Emitter {
	return &Emitter{cfg: cfg, pose: pose, rng: rng}
}

func (e *Emitter) Pose() physics.Transform        { return e.pose }
func (e *Emitter) SetPose(pose physics.Transform) { e.pose = pose }
func (e *Emitter) Live() []*Particle              { return e.live }
func (e *Emitter) Dead() []*Particle              { return e.dead }
func (e *Emitter) Emitted() int                   { return e.emitted }

// ClearDead forgets the particles reported dead so far.
func (e *Emitter) ClearDead() {
	e.dead = e.dead[:0]
}

// Update emits floor(rate * accumulated time) particles, bounded by the
// total budget, then ages every live particle. The accumulated time is
// never reset, so emission speeds up the longer the emitter runs. It
// returns the number of particles emitted.
func (e *Emitter) Update(dt float64) int {
	e.sinceEmit += dt
	count := int(e.cfg.Rate * e.sinceEmit)
	n := 0
	for i := 0; i < count && e.emitted < e.cfg.MaxParticles; i++ {
		e.emit()
		n++
	}

	kept := e.live[:0]
	for _, p := range e.live {
		p.Age()
		if p.Dead() {
			e.dead = append(e.dead, p)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(e.live); i++ {
		e.live[i] = nil
	}
	e.live = kept
	return n
}

func (e *Emitter) emit() {
	spread := e.cfg.Spread
	theta := (e.rng.Float64() - 0.5) * 2 * spread
	phi := e.rng.Float64() * spread
	offset := physics.Vec3{
		math.Sin(theta) * math.Cos(phi),
		math.Sin(phi),
		math.Cos(theta) * math.Cos(phi),
	}
	dir := baseDirection.Add(offset).Normalize()
	speed := e.cfg.Rate * (0.5 + e.rng.Float64())

	e.emitted++
	e.live = append(e.live, &Particle{
		ID:       e.emitted,
		Pose:     e.pose,
		Velocity: dir.Mul(speed),
		LifeSpan: e.cfg.LifeSpan,
		decay:    e.cfg.Decay,
	})
}
