package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

func harmonic(t *testing.T, omega0 float64) *physics.ForceLaw {
	t.Helper()
	law, err := physics.NewWithParams("simple_harmonic", map[string]float64{"omega0": omega0})
	if err != nil {
		t.Fatal(err)
	}
	return law
}

func maxEnergyDrift(law *physics.ForceLaw, traj dynamo.Trajectory, grid dynamo.TimeGrid) float64 {
	e0 := law.Energy(grid.At(0), traj[0])
	drift := 0.0
	for i, s := range traj {
		drift = math.Max(drift, math.Abs(law.Energy(grid.At(i), s)-e0)/e0)
	}
	return drift
}

func onePeriod(dt float64) dynamo.TimeGrid {
	// omega0 = 2 gives a period of pi
	return dynamo.TimeGrid{Start: 0, Dt: dt, N: int(math.Round(math.Pi/dt)) + 1}
}

func TestEulerCromerGolden(t *testing.T) {
	law := harmonic(t, 2)
	grid, err := dynamo.NewTimeGrid(0, 60, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	traj, err := Integrate(EulerCromerMethod, law, dynamo.NewState(0.1, 0), grid)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}
	if len(traj) != 6000 {
		t.Fatalf("expected 6000 states, got %d", len(traj))
	}

	golden := []dynamo.State{
		{0.1, 0},
		{0.09996, -0.004},
		{0.099880016, -0.0079984},
		{0.0997600799936, -0.01199360064},
	}
	for i, want := range golden {
		got := traj[i]
		if math.Abs(got[0]-want[0]) > 1e-14 || math.Abs(got[1]-want[1]) > 1e-14 {
			t.Errorf("step %d: got %v, want %v", i, got, want)
		}
	}
}

func TestSingleStepFormulas(t *testing.T) {
	law := harmonic(t, 2)
	s0 := dynamo.NewState(0.1, 0)

	tests := []struct {
		name    string
		stepper dynamo.Stepper
		want    dynamo.State
	}{
		{"euler-cromer", NewEulerCromer(), dynamo.State{0.09996, -0.004}},
		{"midpoint", NewMidpoint(), dynamo.State{0.0999608, -0.00392}},
		{"rk4", NewRK4(), dynamo.State{0.09996078944, -0.003921056}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.stepper.Step(law, s0, 0, 0.01)
			if math.Abs(got[0]-tt.want[0]) > 1e-14 || math.Abs(got[1]-tt.want[1]) > 1e-14 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionUsesNewVelocity(t *testing.T) {
	law := harmonic(t, 2)
	for _, st := range []dynamo.Stepper{NewEulerCromer(), NewMidpoint(), NewRK4()} {
		s := st.Step(law, dynamo.NewState(0.3, 0.7), 1.0, 0.05)
		if want := 0.3 + 0.05*s[1]; s[0] != want {
			t.Errorf("%T: x' = %v, want x + dt*v' = %v", st, s[0], want)
		}
	}
}

func TestRK4Accuracy(t *testing.T) {
	law := harmonic(t, 1)
	grid := dynamo.TimeGrid{Start: 0, Dt: 0.01, N: 101}

	traj, err := Integrate(JointRK4Method, law, dynamo.NewState(1, 0), grid)
	if err != nil {
		t.Fatal(err)
	}

	x := traj.Final()
	expectedX := math.Cos(grid.End())
	expectedV := -math.Sin(grid.End())

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestOrderOfAccuracy(t *testing.T) {
	law := harmonic(t, 2)
	s0 := dynamo.NewState(0.1, 0)

	drift := func(m Method, dt float64) float64 {
		grid := onePeriod(dt)
		traj, err := Integrate(m, law, s0, grid)
		if err != nil {
			t.Fatalf("%s dt=%g: %v", m, dt, err)
		}
		return maxEnergyDrift(law, traj, grid)
	}

	// First-order schemes: a tenfold smaller step shrinks the drift about tenfold.
	for _, m := range []Method{EulerCromerMethod, MidpointMethod, RK4Method} {
		coarse, fine := drift(m, 0.01), drift(m, 0.001)
		ratio := coarse / fine
		t.Logf("%s: drift(0.01)=%.3e drift(0.001)=%.3e ratio=%.2f", m, coarse, fine, ratio)
		if ratio < 5 || ratio > 20 {
			t.Errorf("%s: drift ratio %.2f not consistent with O(dt)", m, ratio)
		}
	}

	coarse, fine := drift(JointRK4Method, 0.1), drift(JointRK4Method, 0.01)
	t.Logf("rk4-joint: drift(0.1)=%.3e drift(0.01)=%.3e", coarse, fine)
	if coarse/fine < 1e3 {
		t.Errorf("rk4-joint: drift ratio %.2f below fourth order", coarse/fine)
	}
	if fine > 1e-8 {
		t.Errorf("rk4-joint: drift %.3e too large at dt=0.01", fine)
	}
}

func TestIntegrateInvalidGrid(t *testing.T) {
	law := harmonic(t, 2)
	s0 := dynamo.NewState(0.1, 0)

	grids := []struct {
		name string
		grid dynamo.TimeGrid
	}{
		{"zero dt", dynamo.TimeGrid{Start: 0, Dt: 0, N: 10}},
		{"negative dt", dynamo.TimeGrid{Start: 0, Dt: -0.1, N: 10}},
		{"NaN dt", dynamo.TimeGrid{Start: 0, Dt: math.NaN(), N: 10}},
		{"empty", dynamo.TimeGrid{Start: 0, Dt: 0.1, N: 0}},
	}

	for _, m := range Methods() {
		for _, g := range grids {
			t.Run(m+"/"+g.name, func(t *testing.T) {
				traj, err := Integrate(Method(m), law, s0, g.grid)
				var gridErr *dynamo.InvalidGridError
				if !errors.As(err, &gridErr) {
					t.Fatalf("expected *InvalidGridError, got %v", err)
				}
				if traj != nil {
					t.Errorf("expected no trajectory, got %d states", len(traj))
				}
			})
		}
	}
}

func TestIntegratePoints(t *testing.T) {
	law := harmonic(t, 2)
	s0 := dynamo.NewState(0.1, 0)

	traj, err := IntegratePoints(EulerCromerMethod, law, s0, []float64{0, 0.01, 0.02})
	if err != nil {
		t.Fatal(err)
	}
	if len(traj) != 3 || math.Abs(traj[1][1]+0.004) > 1e-15 {
		t.Errorf("unexpected trajectory %v", traj)
	}

	_, err = IntegratePoints(RK4Method, law, s0, []float64{0, 0.02, 0.01})
	if !errors.Is(err, dynamo.ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid for non-monotonic points, got %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"euler-cromer", EulerCromerMethod},
		{"euler", EulerCromerMethod},
		{"midpoint", MidpointMethod},
		{"rk4", RK4Method},
		{"rk4-joint", JointRK4Method},
		{"verlet", VerletMethod},
		{"adaptive", AdaptiveMethod},
		{"rk45", AdaptiveMethod},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseMethod("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if _, err := FixedStepper(AdaptiveMethod); err == nil {
		t.Error("adaptive method should have no fixed stepper")
	}
}
