// Package audio synthesises the scene's two sounds, a chainsaw buzz while
// cutting and a crash when the cabin comes down, and plays them through the
// system speaker.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// chainsaw is an endless two-stroke buzz: a sawtooth at the engine note
// with a little noise, pulsed at the firing rate.
type chainsaw struct {
	rate  beep.SampleRate
	note  float64
	pulse float64
	phase float64
	beat  float64
	rng   *rand.Rand
}

func NewChainsaw(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	return &chainsaw{rate: rate, note: 110, pulse: 28, rng: rng}
}

func (c *chainsaw) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		saw := 2 * (c.phase - 0.5)
		noise := c.rng.Float64()*2 - 1
		gate := 0.6 + 0.4*math.Sin(2*math.Pi*c.beat)
		v := (0.8*saw + 0.2*noise) * gate
		samples[i][0] = v
		samples[i][1] = v

		c.phase += c.note / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.beat += c.pulse / float64(c.rate)
		c.beat -= math.Floor(c.beat)
	}
	return len(samples), true
}

func (c *chainsaw) Err() error { return nil }

// crash is a burst of noise over a low thud, decaying exponentially.
type crash struct {
	rate     beep.SampleRate
	total    int
	position int
	rng      *rand.Rand
}

func NewCrash(rate beep.SampleRate, d time.Duration, rng *rand.Rand) beep.Streamer {
	return &crash{rate: rate, total: rate.N(d), rng: rng}
}

func (c *crash) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if c.position >= c.total {
			return i, i > 0
		}
		t := float64(c.position) / float64(c.rate)
		decay := math.Exp(-6 * float64(c.position) / float64(c.total))
		thud := math.Sin(2 * math.Pi * 55 * t)
		noise := c.rng.Float64()*2 - 1
		v := (0.5*thud + 0.5*noise) * decay
		samples[i][0] = v
		samples[i][1] = v
		c.position++
	}
	return len(samples), true
}

func (c *crash) Err() error { return nil }
