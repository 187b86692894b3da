package physics

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownModel = errors.New("physics: unknown model")
	ErrUnknownParam = errors.New("physics: unknown parameter")
)

type entry struct {
	kind        Kind
	schedule    Schedule
	description string
}

var registry = map[string]entry{
	"simple_harmonic":        {SimpleHarmonic, RampSchedule, "small-angle pendulum, F = -omega0^2 x"},
	"anharmonic":             {Anharmonic, RampSchedule, "power-law spring, F = -k x^alpha"},
	"damped":                 {Damped, RampSchedule, "linear damping, F = -omega0^2 x - 2 beta v"},
	"damped_driven":          {DampedDriven, RampSchedule, "damped plus drive A cos(omega t)"},
	"chaotic_pendulum":       {ChaoticPendulum, RampSchedule, "damped driven pendulum with sin(x) restoring force"},
	"duffing":                {Duffing, RampSchedule, "gamma cos(omega t) - delta v - alpha x - beta x^3"},
	"rayleigh_lorentz":       {RayleighLorentz, RampSchedule, "slowly varying frequency, w(t) = rate t"},
	"rayleigh_lorentz_decay": {RayleighLorentz, DecaySchedule, "modulated frequency, w(t) = exp(-decay t) cos(t)"},
	"van_der_pol":            {VanDerPol, RampSchedule, "self-excited oscillator, F = mu (1 - x^2) v - x"},
}

// New returns a fresh registry entry with default constants.
func New(name string) (*ForceLaw, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownModel, name, Names())
	}
	f := NewForceLaw(e.kind)
	f.name = name
	f.params.Schedule = e.schedule
	return f, nil
}

// NewWithParams resolves name and applies the overrides.
func NewWithParams(name string, overrides map[string]float64) (*ForceLaw, error) {
	f, err := New(name)
	if err != nil {
		return nil, err
	}
	if err := f.SetParams(overrides); err != nil {
		return nil, err
	}
	return f, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Describe(name string) string {
	return registry[name].description
}
