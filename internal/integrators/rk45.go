package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// AdaptiveOptions configures the embedded-error step control.
type AdaptiveOptions struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64 // 0 picks a step from the grid spacing
	MinStep     float64
	MaxStep     float64 // 0 means unbounded
	MaxSteps    int     // accepted plus rejected steps over the whole grid
}

func DefaultAdaptiveOptions() AdaptiveOptions {
	return AdaptiveOptions{
		RelTol:   1.49012e-8,
		AbsTol:   1.49012e-8,
		MinStep:  1e-12,
		MaxSteps: 5_000_000,
	}
}

// Validate reports option combinations the solver cannot run with.
func (o AdaptiveOptions) Validate() error {
	if !(o.RelTol > 0) || !(o.AbsTol > 0) {
		return fmt.Errorf("integrators: tolerances must be positive (rtol=%g, atol=%g)", o.RelTol, o.AbsTol)
	}
	if o.MinStep < 0 || o.MaxStep < 0 || o.InitialStep < 0 {
		return fmt.Errorf("integrators: step bounds must not be negative")
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("integrators: MaxSteps must be positive, got %d", o.MaxSteps)
	}
	return nil
}

// Stats reports the work done by one adaptive solve.
type Stats struct {
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	LastStep    float64 `json:"last_step"`
}

// RK45 is a Dormand-Prince 5(4) solver with step-size control. It advances
// internally with its own step and lands exactly on every requested grid point.
type RK45 struct {
	opts     AdaptiveOptions
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return NewRK45WithOptions(DefaultAdaptiveOptions())
}

func NewRK45WithOptions(opts AdaptiveOptions) *RK45 {
	return &RK45{
		opts:     opts,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Options() AdaptiveOptions { return r.opts }

// Step advances by exactly dt, refining internally. Errors are dropped; use Solve
// when the convergence signal matters.
func (r *RK45) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	var stats Stats
	h := dt
	out, _, _ := r.advance(f, s, t, t+dt, &h, &stats)
	return out
}

// Solve integrates over the whole grid and reports the solution at every grid point.
func (r *RK45) Solve(f dynamo.ForceLaw, s0 dynamo.State, grid dynamo.TimeGrid) (dynamo.Trajectory, Stats, error) {
	var stats Stats
	if err := grid.Validate(); err != nil {
		return nil, stats, err
	}
	if err := r.opts.Validate(); err != nil {
		return nil, stats, err
	}

	traj := make(dynamo.Trajectory, grid.N)
	traj[0] = s0

	h := r.opts.InitialStep
	if h == 0 {
		h = grid.Dt
	}

	s := s0
	for i := 1; i < grid.N; i++ {
		next, _, err := r.advance(f, s, grid.At(i-1), grid.At(i), &h, &stats)
		if err != nil {
			return traj[:i], stats, err
		}
		traj[i] = next
		s = next
	}
	return traj, stats, nil
}

// advance integrates from t0 to t1, clamping the last internal step onto t1.
// h carries the proposed step size between calls.
func (r *RK45) advance(f dynamo.ForceLaw, s dynamo.State, t0, t1 float64, h *float64, stats *Stats) (dynamo.State, float64, error) {
	t := t0
	for t < t1 {
		if stats.Steps+stats.Rejected >= r.opts.MaxSteps {
			return s, t, &dynamo.SolverConvergenceError{Time: t, StepSize: *h, Message: fmt.Sprintf("step budget of %d exhausted", r.opts.MaxSteps)}
		}

		step := *h
		if r.opts.MaxStep > 0 && step > r.opts.MaxStep {
			step = r.opts.MaxStep
		}
		last := t+step >= t1
		if last {
			step = t1 - t
		}

		next, errRatio := r.StepAdaptive(f, s, t, step)
		stats.Evaluations += 7

		if math.IsNaN(errRatio) || !next.IsValid() {
			return s, t, &dynamo.SolverConvergenceError{Time: t, StepSize: step, Message: "non-finite state or error estimate"}
		}

		if errRatio > 1 {
			stats.Rejected++
			*h = step * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			if *h < r.opts.MinStep {
				return s, t, &dynamo.SolverConvergenceError{Time: t, StepSize: *h, Message: "step size underflow"}
			}
			continue
		}

		stats.Steps++
		stats.LastStep = step
		s = next
		if last {
			t = t1
		} else {
			t += step
		}

		// A step clamped onto the grid point says nothing about the natural
		// step size, so only grow from it when it was not shortened.
		if errRatio > 0 {
			grown := step * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			if !last || grown > *h {
				*h = grown
			}
		} else if !last {
			*h = step * r.maxScale
		}
	}
	return s, t, nil
}

// StepAdaptive takes one Dormand-Prince step of size dt and returns the
// fifth-order solution with its error norm relative to the tolerances (<= 1 accepts).
func (r *RK45) StepAdaptive(f dynamo.ForceLaw, x dynamo.State, t, dt float64) (dynamo.State, float64) {
	n := len(x)

	k1 := f.Derive(t, x)

	var x2 dynamo.State
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := f.Derive(t+a2*dt, x2)

	var x3 dynamo.State
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := f.Derive(t+a3*dt, x3)

	var x4 dynamo.State
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f.Derive(t+a4*dt, x4)

	var x5 dynamo.State
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f.Derive(t+a5*dt, x5)

	var x6 dynamo.State
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f.Derive(t+dt, x6)

	var xNew dynamo.State
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := f.Derive(t+dt, xNew)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.opts.AbsTol + r.opts.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, errMax
}
