package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
)

// ConvergencePoint is the global error of one run at step size Dt.
type ConvergencePoint struct {
	Dt    float64
	Error float64
}

// Convergence is the result of an order-of-accuracy study.
type Convergence struct {
	Method integrators.Method
	Points []ConvergencePoint
	// Order is the slope of log(error) against log(dt).
	Order float64
}

// referenceOptions are tight enough that the reference error stays well below
// the errors being measured.
var referenceOptions = integrators.AdaptiveOptions{
	RelTol:   1e-12,
	AbsTol:   1e-12,
	MinStep:  1e-14,
	MaxSteps: 10_000_000,
}

// EstimateOrder integrates s0 to time end with every step in dts and
// compares the final state with a tight adaptive reference. Runs are
// independent and execute concurrently.
func EstimateOrder(ctx context.Context, m integrators.Method, f dynamo.ForceLaw, s0 dynamo.State, end float64, dts []float64) (*Convergence, error) {
	if len(dts) < 2 {
		return nil, fmt.Errorf("analysis: need at least two step sizes, got %d", len(dts))
	}
	if !(end > 0) {
		return nil, fmt.Errorf("analysis: end time must be positive, got %g", end)
	}

	points := make([]ConvergencePoint, len(dts))
	g, ctx := errgroup.WithContext(ctx)
	for i, dt := range dts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			steps := int(math.Round(end / dt))
			if steps < 1 {
				return fmt.Errorf("analysis: step %g is longer than the interval", dt)
			}
			grid := dynamo.TimeGrid{Start: 0, Dt: dt, N: steps + 1}

			traj, err := integrators.Integrate(m, f, s0, grid)
			if err != nil {
				return fmt.Errorf("dt=%g: %w", dt, err)
			}
			ref, _, err := integrators.NewRK45WithOptions(referenceOptions).Solve(f, s0, dynamo.TimeGrid{Start: 0, Dt: grid.End(), N: 2})
			if err != nil {
				return fmt.Errorf("reference for dt=%g: %w", dt, err)
			}
			points[i] = ConvergencePoint{Dt: dt, Error: traj.Final().Sub(ref.Final()).Norm()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Dt < points[j].Dt })

	logDt := make([]float64, 0, len(points))
	logErr := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Error > 0 {
			logDt = append(logDt, math.Log(p.Dt))
			logErr = append(logErr, math.Log(p.Error))
		}
	}
	if len(logDt) < 2 {
		return nil, fmt.Errorf("analysis: errors vanish at every step size")
	}
	_, slope := stat.LinearRegression(logDt, logErr, nil, false)

	return &Convergence{Method: m, Points: points, Order: slope}, nil
}
