package system

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/woodcut/treehouse/internal/system"

// Metrics are the scene counters. They come from the global OTel provider,
// which is a no-op unless the binary installs one.
type Metrics struct {
	Ticks      metric.Int64Counter
	CutImpulse metric.Float64Histogram
	Collapses  metric.Int64Counter
	Promoted   metric.Int64Counter
	Removed    metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out Metrics
		err error
	)
	if out.Ticks, err = m.Int64Counter("scene.ticks",
		metric.WithDescription("Scene ticks run")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if out.CutImpulse, err = m.Float64Histogram("scene.cut.impulse",
		metric.WithDescription("Impulse magnitude applied to the trunk per cutting tick"),
		metric.WithUnit("N.s")); err != nil {
		return nil, fmt.Errorf("creating cut impulse histogram: %w", err)
	}
	if out.Collapses, err = m.Int64Counter("scene.collapses",
		metric.WithDescription("Cabin collapses")); err != nil {
		return nil, fmt.Errorf("creating collapses counter: %w", err)
	}
	if out.Promoted, err = m.Int64Counter("scene.particles.promoted",
		metric.WithDescription("Particles added to the scene")); err != nil {
		return nil, fmt.Errorf("creating promoted counter: %w", err)
	}
	if out.Removed, err = m.Int64Counter("scene.particles.removed",
		metric.WithDescription("Dead particles removed from the scene")); err != nil {
		return nil, fmt.Errorf("creating removed counter: %w", err)
	}
	return &out, nil
}
