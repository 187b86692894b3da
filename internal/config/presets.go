package config

import "sort"

func preset(model, method string, dt, end, x, v float64, params map[string]float64) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.Method = method
	cfg.Dt = dt
	cfg.End = end
	cfg.Init = InitStateConfig{X: x, V: v}
	cfg.Params = params
	return cfg
}

var Presets = map[string]map[string]*Config{
	"simple_harmonic": {
		"small": preset("simple_harmonic", "euler-cromer", 0.1, 60, 0.2, 0, nil),
		"fast":  preset("simple_harmonic", "rk4-joint", 0.01, 20, 0.1, 0, map[string]float64{"omega0": 2}),
	},
	"anharmonic": {
		"cubic":   preset("anharmonic", "euler-cromer", 0.1, 60, 0.2, 0, nil),
		"quintic": preset("anharmonic", "rk4-joint", 0.01, 60, 1, 0, map[string]float64{"alpha": 5}),
	},
	"damped": {
		"underdamped": preset("damped", "euler-cromer", 0.1, 60, 0.2, 0, nil),
		"critical":    preset("damped", "rk4-joint", 0.01, 20, 1, 0, map[string]float64{"beta": 1}),
		"overdamped":  preset("damped", "rk4-joint", 0.01, 20, 1, 0, map[string]float64{"beta": 2}),
	},
	"damped_driven": {
		"default":   preset("damped_driven", "euler-cromer", 0.1, 60, 0.2, 0, nil),
		"resonance": preset("damped_driven", "rk4-joint", 0.01, 100, 0, 0, map[string]float64{"omega": 1, "beta": 0.05, "A": 0.1}),
	},
	"chaotic_pendulum": {
		"periodic": preset("chaotic_pendulum", "rk4-joint", 0.01, 100, 0.2, 0, map[string]float64{"A": 0.5}),
		"chaos":    preset("chaotic_pendulum", "adaptive", 0.05, 200, 0.2, 0, nil),
	},
	"duffing": {
		"double_well": preset("duffing", "rk4-joint", 0.01, 100, 1, 0, nil),
		"hard_spring": preset("duffing", "rk4-joint", 0.01, 100, 1, 0, map[string]float64{"alpha": 1, "gamma": 0.2}),
	},
	"rayleigh_lorentz": {
		"ramp": preset("rayleigh_lorentz", "euler-cromer", 0.1, 60, 0.2, 0, nil),
	},
	"rayleigh_lorentz_decay": {
		"decay": preset("rayleigh_lorentz_decay", "euler-cromer", 0.1, 60, 0.2, 0, nil),
	},
	"van_der_pol": {
		"weak":       preset("van_der_pol", "rk4-joint", 0.01, 60, 0.2, 0, map[string]float64{"mu": 0.1}),
		"relaxation": preset("van_der_pol", "adaptive", 0.05, 60, 2, 0, map[string]float64{"mu": 5}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
