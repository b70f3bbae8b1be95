package system

import (
	"time"

	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/world"
)

// Drawer paints one frame of the scene.
type Drawer interface {
	Draw(pw physics.World, st *world.State)
}

// SoundPlayer plays the scene's sounds.
type SoundPlayer interface {
	StartChainsaw()
	StopChainsaw()
	Crash()
}

// RenderSystem draws a frame every tick. Phase 3 (Output).
type RenderSystem struct {
	drawer Drawer
	pw     physics.World
	state  *world.State
}

func NewRenderSystem(d Drawer, pw physics.World, state *world.State) *RenderSystem {
	return &RenderSystem{drawer: d, pw: pw, state: state}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	s.drawer.Draw(s.pw, s.state)
}

type cue int

const (
	cueSawOn cue = iota
	cueSawOff
	cueCrash
)

// AudioSystem turns narrative events into sound cues. Phase 3 (Output).
type AudioSystem struct {
	player SoundPlayer
	cues   []cue
}

func NewAudioSystem(bus *event.Bus, player SoundPlayer) *AudioSystem {
	s := &AudioSystem{player: player}
	event.Subscribe(bus, func(event.CuttingStarted) { s.cues = append(s.cues, cueSawOn) })
	event.Subscribe(bus, func(event.CuttingStopped) { s.cues = append(s.cues, cueSawOff) })
	event.Subscribe(bus, func(event.HouseCollapsed) { s.cues = append(s.cues, cueCrash) })
	return s
}

func (s *AudioSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *AudioSystem) Update(_ time.Duration) {
	for _, c := range s.cues {
		switch c {
		case cueSawOn:
			s.player.StartChainsaw()
		case cueSawOff:
			s.player.StopChainsaw()
		case cueCrash:
			s.player.Crash()
		}
	}
	s.cues = s.cues[:0]
}
