package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

func TestEnergyMean(t *testing.T) {
	law, _ := physics.New("chaotic_pendulum")
	m := NewEnergy(law)

	theta := math.Pi / 4
	m.Observe(0, dynamo.NewState(theta, 0))
	expected := 1 - math.Cos(theta)

	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	law, _ := physics.New("simple_harmonic")
	m := NewEnergyDrift(law)

	m.Observe(0, dynamo.NewState(1, 0))     // E = 0.5
	m.Observe(0.1, dynamo.NewState(0, 1.1)) // E = 0.605
	m.Observe(0.2, dynamo.NewState(1, 0))

	if got := m.Value(); math.Abs(got-0.21) > 1e-12 {
		t.Errorf("drift = %v, want 0.21", got)
	}
	if m.Final() != 0.5 {
		t.Errorf("final energy = %v, want 0.5", m.Final())
	}
}

func TestEnergyDriftFromRest(t *testing.T) {
	law, _ := physics.New("simple_harmonic")
	m := NewEnergyDrift(law)
	m.Observe(0, dynamo.NewState(0, 0))
	m.Observe(1, dynamo.NewState(0, 0.2))
	if got := m.Value(); math.Abs(got-0.02) > 1e-15 {
		t.Errorf("absolute drift = %v, want 0.02", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1 {
		t.Errorf("empty stability = %v, want 1", s.Value())
	}
	s.Observe(0, dynamo.NewState(0.5, 0.5))
	s.Observe(0, dynamo.NewState(2, 0))
	s.Observe(0, dynamo.NewState(math.NaN(), 0))
	s.Observe(0, dynamo.NewState(0, -0.9))

	if got := s.Value(); got != 0.5 {
		t.Errorf("stability = %v, want 0.5", got)
	}
}

func TestEvaluate(t *testing.T) {
	law, _ := physics.New("simple_harmonic")
	grid := dynamo.TimeGrid{Start: 0, Dt: 0.1, N: 3}
	traj := dynamo.Trajectory{{1, 0}, {0.5, -0.5}, {-1.5, 0}}

	got := Evaluate(traj, grid, Defaults(law, 1)...)

	want := map[string]float64{
		"amplitude":    1.5,
		"stability":    2.0 / 3.0,
		"energy":       (0.5 + 0.25 + 1.125) / 3,
		"energy_drift": 1.25,
	}
	for name, w := range want {
		if math.Abs(got[name]-w) > 1e-12 {
			t.Errorf("%s = %v, want %v", name, got[name], w)
		}
	}
}
