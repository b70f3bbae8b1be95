package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/woodcut/treehouse/internal/config"
)

const crashLength = 1500 * time.Millisecond

// Engine mixes the scene sounds. It is safe to call from the tick loop
// while the speaker goroutine streams.
type Engine struct {
	mu       sync.Mutex
	rate     beep.SampleRate
	volume   float64
	mixer    *beep.Mixer
	chainsaw *beep.Ctrl
	rng      *rand.Rand
	live     bool
	log      *zap.Logger
}

// Open initialises the speaker and starts streaming the mixer.
func Open(cfg config.AudioConfig, log *zap.Logger) (*Engine, error) {
	e := newEngine(beep.SampleRate(cfg.SampleRate), cfg.Volume, log)
	if err := speaker.Init(e.rate, e.rate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	speaker.Play(e.mixer)
	e.live = true
	log.Info("audio ready", zap.Int("sample_rate", int(e.rate)))
	return e, nil
}

func newEngine(rate beep.SampleRate, volume float64, log *zap.Logger) *Engine {
	return &Engine{
		rate:   rate,
		volume: volume,
		mixer:  &beep.Mixer{},
		rng:    rand.New(rand.NewSource(1)),
		log:    log,
	}
}

// locked runs fn with the speaker paused when it is streaming.
func (e *Engine) locked(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

func (e *Engine) StartChainsaw() {
	e.locked(func() {
		if e.chainsaw != nil {
			e.chainsaw.Paused = false
			return
		}
		e.chainsaw = &beep.Ctrl{Streamer: withVolume(NewChainsaw(e.rate, e.rng), e.volume)}
		e.mixer.Add(e.chainsaw)
	})
}

func (e *Engine) StopChainsaw() {
	e.locked(func() {
		if e.chainsaw != nil {
			e.chainsaw.Paused = true
		}
	})
}

func (e *Engine) Crash() {
	e.locked(func() {
		e.mixer.Add(withVolume(NewCrash(e.rate, crashLength, e.rng), e.volume))
	})
}

// Close silences everything. The speaker itself stays initialised.
func (e *Engine) Close() {
	e.locked(func() {
		e.mixer.Clear()
		e.chainsaw = nil
	})
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Nop is the engine used when audio is disabled.
type Nop struct{}

func (Nop) StartChainsaw() {}
func (Nop) StopChainsaw()  {}
func (Nop) Crash()         {}
func (Nop) Close()         {}
