package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
)

var samplePoints = []struct{ t, x, v float64 }{
	{0, 0, 0},
	{0, 0.2, 0},
	{1.3, -0.7, 2.1},
	{12.5, 3.0, -4.0},
	{59.9, -0.01, 0.5},
}

func TestDerivativeConsistency(t *testing.T) {
	for _, name := range Names() {
		law, err := New(name)
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		for _, p := range samplePoints {
			d := law.Derive(p.t, dynamo.NewState(p.x, p.v))
			if d[0] != p.v {
				t.Errorf("%s: derivative[0] = %v, want v = %v", name, d[0], p.v)
			}
		}
	}
}

func TestForceExpressions(t *testing.T) {
	const tm, x, v = 2.0, 0.3, -0.4

	tests := []struct {
		name string
		want float64
	}{
		{"simple_harmonic", -x},
		{"anharmonic", -math.Pow(x, 3)},
		{"damped", -x - 0.5*v},
		{"damped_driven", -x - 0.5*v + 1.2*math.Cos(2.0/3.0*tm)},
		{"chaotic_pendulum", -math.Sin(x) - 0.5*v + 1.2*math.Cos(2.0/3.0*tm)},
		{"duffing", 0.5*math.Cos(1.2*tm) - 0.3*v + x - x*x*x},
		{"rayleigh_lorentz", -(0.02 * 0.02) * x},
		{"rayleigh_lorentz_decay", -math.Pow(math.Exp(-0.2)*math.Cos(tm), 2) * x},
		{"van_der_pol", (1-x*x)*v - x},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			law, err := New(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			got := law.Accel(tm, x, v)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Accel = %.15g, want %.15g", got, tt.want)
			}
		})
	}
}

func TestPureFunction(t *testing.T) {
	for _, name := range Names() {
		law, _ := New(name)
		s := dynamo.NewState(0.4, -0.1)
		first := law.Derive(3.3, s)
		law.Derive(1.0, dynamo.NewState(9, 9))
		if again := law.Derive(3.3, s); again != first {
			t.Errorf("%s: repeated call changed result %v -> %v", name, first, again)
		}
	}
}

func TestNaNPropagates(t *testing.T) {
	law, _ := New("duffing")
	d := law.Derive(0, dynamo.NewState(math.NaN(), 0))
	if !math.IsNaN(d[1]) {
		t.Errorf("expected NaN acceleration, got %v", d[1])
	}
}

func TestSetParam(t *testing.T) {
	law, _ := New("simple_harmonic")
	if err := law.SetParam("omega0", 2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if got := law.Accel(0, 0.1, 0); math.Abs(got+0.4) > 1e-15 {
		t.Errorf("Accel with omega0=2 = %v, want -0.4", got)
	}
	if law.GetParams()["omega0"] != 2 {
		t.Errorf("GetParams = %v", law.GetParams())
	}

	err := law.SetParam("mu", 1)
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestNewWithParams(t *testing.T) {
	law, err := NewWithParams("duffing", map[string]float64{"gamma": 0.37, "delta": 0.1})
	if err != nil {
		t.Fatal(err)
	}
	p := law.GetParams()
	if p["gamma"] != 0.37 || p["delta"] != 0.1 || p["beta"] != 1 {
		t.Errorf("unexpected params %v", p)
	}

	if _, err := NewWithParams("duffing", map[string]float64{"q": 1}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := New("spherical_cow"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	law, _ := New("van_der_pol")
	c := law.Clone()
	if err := c.SetParam("mu", 5); err != nil {
		t.Fatal(err)
	}
	if law.GetParams()["mu"] != 1 {
		t.Error("changing the clone modified the original")
	}
}

func TestEnergy(t *testing.T) {
	law, _ := New("simple_harmonic")
	_ = law.SetParam("omega0", 2)
	if e := law.Energy(0, dynamo.NewState(0.1, 0)); math.Abs(e-0.02) > 1e-15 {
		t.Errorf("SHO energy = %v, want 0.02", e)
	}

	pend, _ := New("chaotic_pendulum")
	if e := pend.Energy(0, dynamo.NewState(math.Pi, 0)); math.Abs(e-2) > 1e-12 {
		t.Errorf("inverted pendulum energy = %v, want 2", e)
	}
}

func TestRegistryNames(t *testing.T) {
	names := Names()
	if len(names) != 9 {
		t.Fatalf("expected 9 registered models, got %d: %v", len(names), names)
	}
	for _, name := range names {
		if Describe(name) == "" {
			t.Errorf("%s has no description", name)
		}
		law, _ := New(name)
		if law.Name() != name {
			t.Errorf("Name() = %s, want %s", law.Name(), name)
		}
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("unexpected String for unknown kind: %s", Kind(42))
	}
}
