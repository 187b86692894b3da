package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Kind tags one of the closed set of supported oscillator models.
type Kind int

const (
	SimpleHarmonic Kind = iota
	Anharmonic
	Damped
	DampedDriven
	ChaoticPendulum
	Duffing
	RayleighLorentz
	VanDerPol
)

var kindNames = map[Kind]string{
	SimpleHarmonic:  "simple_harmonic",
	Anharmonic:      "anharmonic",
	Damped:          "damped",
	DampedDriven:    "damped_driven",
	ChaoticPendulum: "chaotic_pendulum",
	Duffing:         "duffing",
	RayleighLorentz: "rayleigh_lorentz",
	VanDerPol:       "van_der_pol",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Schedule selects the time dependence of the Rayleigh-Lorentz frequency.
type Schedule int

const (
	// RampSchedule is w(t) = rate*t.
	RampSchedule Schedule = iota
	// DecaySchedule is w(t) = exp(-decay*t)*cos(t).
	DecaySchedule
)

// Params holds every physical constant used by the registry. Each kind reads
// only the fields listed in its paramSpecs entry.
type Params struct {
	Omega0 float64 // natural angular frequency
	K      float64 // anharmonic stiffness
	Alpha  float64 // anharmonic exponent, or Duffing linear stiffness
	Beta   float64 // damping rate (2*Beta*v), or Duffing cubic stiffness
	A      float64 // drive amplitude
	Omega  float64 // drive angular frequency
	Delta  float64 // Duffing damping
	Gamma  float64 // Duffing drive amplitude
	Mu     float64 // van der Pol nonlinearity
	Rate   float64 // Rayleigh-Lorentz ramp slope
	Decay  float64 // Rayleigh-Lorentz envelope decay

	Schedule Schedule
}

// ForceLaw is one registry entry: a model tag plus its constants.
// Derive is pure; SetParam must not be called while a trajectory is being computed.
type ForceLaw struct {
	kind   Kind
	name   string
	params Params
}

// NewForceLaw returns the model with its default constants.
func NewForceLaw(kind Kind) *ForceLaw {
	return &ForceLaw{kind: kind, name: kind.String(), params: defaults(kind)}
}

func (f *ForceLaw) Kind() Kind     { return f.kind }
func (f *ForceLaw) Name() string   { return f.name }
func (f *ForceLaw) Params() Params { return f.params }

// Clone returns an independent copy whose constants can be changed safely.
func (f *ForceLaw) Clone() *ForceLaw {
	c := *f
	return &c
}

// Derive returns (v, F(t, x, v)).
func (f *ForceLaw) Derive(t float64, s dynamo.State) dynamo.State {
	return dynamo.State{s[1], f.Accel(t, s[0], s[1])}
}

// Accel evaluates the force expression F(t, x, v) of the model.
func (f *ForceLaw) Accel(t, x, v float64) float64 {
	p := &f.params
	switch f.kind {
	case SimpleHarmonic:
		return restoring(p, x)
	case Anharmonic:
		return -p.K * math.Pow(x, p.Alpha)
	case Damped:
		return damped(p, x, v)
	case DampedDriven:
		return damped(p, x, v) + p.A*math.Cos(p.Omega*t)
	case ChaoticPendulum:
		return damped(p, math.Sin(x), v) + p.A*math.Cos(p.Omega*t)
	case Duffing:
		return p.Gamma*math.Cos(p.Omega*t) - p.Delta*v - p.Alpha*x - p.Beta*x*x*x
	case RayleighLorentz:
		w := p.frequency(t)
		return -(w * w) * x
	case VanDerPol:
		return p.Mu*(1-x*x)*v - x
	}
	return 0
}

// Energy returns the mechanical energy of the conservative part of the model.
func (f *ForceLaw) Energy(t float64, s dynamo.State) float64 {
	p := &f.params
	x, v := s[0], s[1]
	ke := 0.5 * v * v
	switch f.kind {
	case Anharmonic:
		return ke + p.K*math.Pow(x, p.Alpha+1)/(p.Alpha+1)
	case ChaoticPendulum:
		return ke + p.Omega0*p.Omega0*(1-math.Cos(x))
	case Duffing:
		return ke + 0.5*p.Alpha*x*x + 0.25*p.Beta*x*x*x*x
	case RayleighLorentz:
		w := p.frequency(t)
		return ke + 0.5*w*w*x*x
	case VanDerPol:
		return ke + 0.5*x*x
	default:
		return ke + 0.5*p.Omega0*p.Omega0*x*x
	}
}

func (p *Params) frequency(t float64) float64 {
	if p.Schedule == DecaySchedule {
		return math.Exp(-p.Decay*t) * math.Cos(t)
	}
	return p.Rate * t
}

func restoring(p *Params, x float64) float64 {
	return -(p.Omega0 * p.Omega0) * x
}

func damped(p *Params, x, v float64) float64 {
	return restoring(p, x) - 2*p.Beta*v
}

func defaults(kind Kind) Params {
	switch kind {
	case SimpleHarmonic:
		// g = l, so omega0 = sqrt(g/l) = 1
		return Params{Omega0: 1}
	case Anharmonic:
		return Params{K: 1, Alpha: 3}
	case Damped:
		return Params{Omega0: 1, Beta: 0.25}
	case DampedDriven, ChaoticPendulum:
		return Params{Omega0: 1, Beta: 0.25, A: 1.2, Omega: 2.0 / 3.0}
	case Duffing:
		return Params{Delta: 0.3, Alpha: -1, Beta: 1, Gamma: 0.5, Omega: 1.2}
	case RayleighLorentz:
		return Params{Rate: 0.01, Decay: 0.1, Schedule: RampSchedule}
	case VanDerPol:
		return Params{Mu: 1}
	}
	return Params{}
}

// paramSpecs lists the user-facing constant names of each kind.
var paramSpecs = map[Kind][]string{
	SimpleHarmonic:  {"omega0"},
	Anharmonic:      {"k", "alpha"},
	Damped:          {"omega0", "beta"},
	DampedDriven:    {"omega0", "beta", "A", "omega"},
	ChaoticPendulum: {"omega0", "beta", "A", "omega"},
	Duffing:         {"delta", "alpha", "beta", "gamma", "omega"},
	RayleighLorentz: {"rate", "decay"},
	VanDerPol:       {"mu"},
}

func (p *Params) field(name string) *float64 {
	switch name {
	case "omega0":
		return &p.Omega0
	case "k":
		return &p.K
	case "alpha":
		return &p.Alpha
	case "beta":
		return &p.Beta
	case "A":
		return &p.A
	case "omega":
		return &p.Omega
	case "delta":
		return &p.Delta
	case "gamma":
		return &p.Gamma
	case "mu":
		return &p.Mu
	case "rate":
		return &p.Rate
	case "decay":
		return &p.Decay
	}
	return nil
}

// ParamNames returns the constants accepted by SetParam, in declaration order.
func (f *ForceLaw) ParamNames() []string {
	names := make([]string, len(paramSpecs[f.kind]))
	copy(names, paramSpecs[f.kind])
	return names
}

// GetParams implements dynamo.Configurable.
func (f *ForceLaw) GetParams() map[string]float64 {
	out := make(map[string]float64, len(paramSpecs[f.kind]))
	for _, name := range paramSpecs[f.kind] {
		out[name] = *f.params.field(name)
	}
	return out
}

// SetParam implements dynamo.Configurable.
func (f *ForceLaw) SetParam(name string, value float64) error {
	for _, known := range paramSpecs[f.kind] {
		if known == name {
			*f.params.field(name) = value
			return nil
		}
	}
	return fmt.Errorf("%w: %q for model %s (have %v)", ErrUnknownParam, name, f.name, f.ParamNames())
}

// SetParams applies overrides in sorted key order and stops at the first unknown name.
func (f *ForceLaw) SetParams(overrides map[string]float64) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := f.SetParam(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}
