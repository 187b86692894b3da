package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"zeros", State{0.0, 0.0}, true},
		{"normal", State{1.0, 2.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{math.Inf(1), 1.0}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2}
	b := State{4, 6}

	if sum := a.Add(b); sum != (State{5, 8}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if diff := b.Sub(a); diff != (State{3, 4}) {
		t.Errorf("Sub failed: got %v", diff)
	}
	if scaled := a.Scale(2); scaled != (State{2, 4}) {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if n := (State{3, 4}).Norm(); math.Abs(n-5) > 1e-12 {
		t.Errorf("Norm = %v, want 5", n)
	}
}

func TestTrajectory_Components(t *testing.T) {
	tr := Trajectory{{1, 2}, {3, 4}, {5, 6}}

	xs := tr.Positions()
	vs := tr.Velocities()
	if len(xs) != 3 || xs[2] != 5 {
		t.Errorf("Positions = %v", xs)
	}
	if len(vs) != 3 || vs[0] != 2 {
		t.Errorf("Velocities = %v", vs)
	}
	if tr.Final() != (State{5, 6}) {
		t.Errorf("Final = %v", tr.Final())
	}
	if (Trajectory{}).Final() != (State{}) {
		t.Error("Final of empty trajectory should be the zero state")
	}
}

func TestNewTimeGrid(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		dt         float64
		n          int
	}{
		{"default run", 0, 60, 0.1, 600},
		{"fine run", 0, 60, 0.01, 6000},
		{"single point", 0, 0.01, 0.01, 1},
		{"partial last step", 0, 1, 0.3, 4},
		{"offset start", 5, 6, 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewTimeGrid(tt.start, tt.end, tt.dt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.N != tt.n {
				t.Errorf("N = %d, want %d", g.N, tt.n)
			}
			if g.At(0) != tt.start {
				t.Errorf("At(0) = %v, want %v", g.At(0), tt.start)
			}
			if g.End() >= tt.end {
				t.Errorf("End() = %v, must stay below %v", g.End(), tt.end)
			}
		})
	}
}

func TestNewTimeGrid_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		dt         float64
	}{
		{"zero dt", 0, 1, 0},
		{"negative dt", 0, 1, -0.1},
		{"NaN dt", 0, 1, math.NaN()},
		{"infinite dt", 0, 1, math.Inf(1)},
		{"empty interval", 1, 1, 0.1},
		{"reversed interval", 2, 1, 0.1},
		{"infinite end", 0, math.Inf(1), 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeGrid(tt.start, tt.end, tt.dt)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Fatalf("expected ErrInvalidGrid, got %v", err)
			}
			var gridErr *InvalidGridError
			if !errors.As(err, &gridErr) {
				t.Fatalf("expected *InvalidGridError, got %T", err)
			}
		})
	}
}

func TestTimeGridFromPoints(t *testing.T) {
	g, err := TimeGridFromPoints([]float64{0, 0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.N != 4 || math.Abs(g.Dt-0.1) > 1e-15 {
		t.Errorf("got grid %+v", g)
	}

	single, err := TimeGridFromPoints([]float64{2.5})
	if err != nil {
		t.Fatalf("single point: %v", err)
	}
	if single.N != 1 || single.At(0) != 2.5 {
		t.Errorf("single point grid %+v", single)
	}

	bad := []struct {
		name  string
		ts    []float64
		index int
	}{
		{"empty", nil, -1},
		{"decreasing", []float64{0, 0.1, 0.05}, 2},
		{"repeated", []float64{0, 0.1, 0.1}, 2},
		{"non-uniform", []float64{0, 0.1, 0.3}, 2},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TimeGridFromPoints(tt.ts)
			var gridErr *InvalidGridError
			if !errors.As(err, &gridErr) {
				t.Fatalf("expected *InvalidGridError, got %v", err)
			}
			if gridErr.Index != tt.index {
				t.Errorf("Index = %d, want %d", gridErr.Index, tt.index)
			}
		})
	}
}

func TestCheckDivergence(t *testing.T) {
	g := TimeGrid{Start: 0, Dt: 0.5, N: 3}

	if err := CheckDivergence(Trajectory{{1, 0}, {2, 1}, {3, 2}}, g, 10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckDivergence(Trajectory{{1, 0}, {20, 1}, {3, 2}}, g, 10)
	var divErr *NumericDivergenceError
	if !errors.As(err, &divErr) {
		t.Fatalf("expected *NumericDivergenceError, got %v", err)
	}
	if divErr.Step != 1 || divErr.Time != 0.5 {
		t.Errorf("got step %d t=%v", divErr.Step, divErr.Time)
	}
	if !errors.Is(err, ErrDiverged) {
		t.Error("expected errors.Is(err, ErrDiverged)")
	}

	if err := CheckDivergence(Trajectory{{1, math.NaN()}}, g, 0); !errors.Is(err, ErrDiverged) {
		t.Errorf("NaN should diverge with bound 0, got %v", err)
	}
}

func TestSolverConvergenceError(t *testing.T) {
	err := error(&SolverConvergenceError{Time: 1.5, StepSize: 1e-13, Message: "step size underflow"})
	if !errors.Is(err, ErrSolverConvergence) {
		t.Error("expected errors.Is(err, ErrSolverConvergence)")
	}
	want := "dynamo: adaptive solver failed to converge at t=1.5 (h=1e-13): step size underflow"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
