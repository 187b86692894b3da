package sim

import (
	"time"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
)

// Observer is notified once per stored grid point after a run completes.
type Observer interface {
	OnStep(i int, t float64, s dynamo.State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(i int, t float64, s dynamo.State)

func (f ObserverFunc) OnStep(i int, t float64, s dynamo.State) { f(i, t, s) }

type Config struct {
	Method   integrators.Method
	Adaptive integrators.AdaptiveOptions
	// Bound enables the advisory divergence check when positive.
	Bound float64
}

type Result struct {
	Times   []float64
	States  dynamo.Trajectory
	Metrics map[string]float64
	Stats   integrators.Stats
	Elapsed time.Duration

	// Divergence is the advisory NumericDivergenceError, if any. It never fails the run.
	Divergence error
}
