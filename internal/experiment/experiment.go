package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
	"github.com/san-kum/oscsim/internal/sim"
)

// DefaultStabilityBound is the amplitude the stability metric counts
// violations against when the config sets no bound.
const DefaultStabilityBound = 10.0

// Experiment is a fully resolved run configuration.
type Experiment struct {
	cfg       *config.Config
	law       *physics.ForceLaw
	method    integrators.Method
	grid      dynamo.TimeGrid
	simulator *sim.Simulator
}

// New resolves the model, method and grid named in cfg.
func New(cfg *config.Config) (*Experiment, error) {
	law, err := cfg.ForceLaw()
	if err != nil {
		return nil, err
	}
	method, err := integrators.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	opts := cfg.AdaptiveOptions()
	if method == integrators.AdaptiveMethod {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}

	e := &Experiment{cfg: cfg, law: law, method: method, grid: grid}
	e.simulator = sim.New(law, sim.Config{Method: method, Adaptive: opts, Bound: cfg.Bound})

	bound := cfg.Bound
	if bound <= 0 {
		bound = DefaultStabilityBound
	}
	for _, m := range DefaultMetrics(law, bound) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.InitialState(), e.grid)
}

func (e *Experiment) Config() *config.Config     { return e.cfg }
func (e *Experiment) Law() *physics.ForceLaw     { return e.law }
func (e *Experiment) Method() integrators.Method { return e.method }
func (e *Experiment) Grid() dynamo.TimeGrid      { return e.grid }
func (e *Experiment) Simulator() *sim.Simulator  { return e.simulator }
func (e *Experiment) InitialState() dynamo.State { return e.cfg.InitialState() }
