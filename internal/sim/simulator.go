package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/metrics"
)

// Simulator binds a force law to an integration method and reports metrics
// over the resulting trajectory.
type Simulator struct {
	law       dynamo.ForceLaw
	cfg       Config
	metrics   []metrics.Metric
	observers []Observer
}

func New(law dynamo.ForceLaw, cfg Config) *Simulator {
	if cfg.Adaptive == (integrators.AdaptiveOptions{}) {
		cfg.Adaptive = integrators.DefaultAdaptiveOptions()
	}
	return &Simulator{
		law:       law,
		cfg:       cfg,
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

func (s *Simulator) Law() dynamo.ForceLaw { return s.law }
func (s *Simulator) Config() Config       { return s.cfg }

// Run integrates s0 over grid. The context is checked before integration and
// while observers are notified; stepping itself is not interruptible.
func (s *Simulator) Run(ctx context.Context, s0 dynamo.State, grid dynamo.TimeGrid) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	traj, stats, err := s.integrate(s0, grid)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", s.cfg.Method, lawName(s.law), err)
	}

	result := &Result{
		Times:   grid.Points(),
		States:  traj,
		Metrics: metrics.Evaluate(traj, grid, s.metrics...),
		Stats:   stats,
		Elapsed: time.Since(start),
	}
	if s.cfg.Bound > 0 {
		result.Divergence = dynamo.CheckDivergence(traj, grid, s.cfg.Bound)
	}

	err = s.replay(ctx, result, func(i int, t float64, x dynamo.State) bool {
		for _, obs := range s.observers {
			obs.OnStep(i, t, x)
		}
		return true
	})
	return result, err
}

// RunWithCallback replays the trajectory point by point until callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, s0 dynamo.State, grid dynamo.TimeGrid, callback func(i int, t float64, x dynamo.State) bool) error {
	result, err := s.Run(ctx, s0, grid)
	if err != nil {
		return err
	}
	return s.replay(ctx, result, callback)
}

func (s *Simulator) replay(ctx context.Context, r *Result, fn func(int, float64, dynamo.State) bool) error {
	for i, x := range r.States {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !fn(i, r.Times[i], x) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) integrate(s0 dynamo.State, grid dynamo.TimeGrid) (dynamo.Trajectory, integrators.Stats, error) {
	if s.cfg.Method == integrators.AdaptiveMethod {
		return integrators.NewRK45WithOptions(s.cfg.Adaptive).Solve(s.law, s0, grid)
	}
	st, err := integrators.FixedStepper(s.cfg.Method)
	if err != nil {
		return nil, integrators.Stats{}, err
	}
	traj, err := integrators.Run(st, s.law, s0, grid)
	if err != nil {
		return nil, integrators.Stats{}, err
	}
	return traj, integrators.Stats{Steps: len(traj) - 1, LastStep: grid.Dt}, nil
}

func lawName(law dynamo.ForceLaw) string {
	if n, ok := law.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", law)
}
