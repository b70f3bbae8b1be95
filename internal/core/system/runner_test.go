package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recordingSystem) Phase() Phase { return s.phase }

func (s recordingSystem) Update(time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordingSystem{"cleanup", PhaseCleanup, &log})
	r.Register(recordingSystem{"collapse", PhaseUpdate, &log})
	r.Register(recordingSystem{"cutting", PhaseUpdate, &log})
	r.Register(recordingSystem{"dispatch", PhaseInput, &log})
	r.Register(recordingSystem{"effects", PhaseUpdate, &log})

	r.Tick(time.Second / 60)
	assert.Equal(t, []string{"dispatch", "collapse", "cutting", "effects", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunnerLenAndUnknownPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordingSystem{"dispatch", PhaseInput, &log})
	r.Register(recordingSystem{"step", PhaseSimulate, &log})

	assert.Equal(t, 1, r.Len(PhaseSimulate))
	assert.Equal(t, 0, r.Len(PhaseOutput))
	assert.Equal(t, 0, r.Len(Phase(42)))
	assert.Panics(t, func() { r.Register(recordingSystem{"bad", Phase(42), &log}) })
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "simulate", PhaseSimulate.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
