package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "simple_harmonic" {
		t.Errorf("expected model simple_harmonic, got %s", cfg.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	grid, err := cfg.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if grid.N != 600 || grid.Start != 0 || grid.Dt != 0.1 {
		t.Errorf("unexpected default grid %+v", grid)
	}
	if cfg.InitialState() != dynamo.NewState(0.2, 0) {
		t.Errorf("unexpected initial state %v", cfg.InitialState())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
model: duffing
method: rk4-joint
dt: 0.01
params:
  gamma: 0.37
init_state:
  x: 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model != "duffing" || cfg.Method != "rk4-joint" || cfg.Dt != 0.01 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.End != DefaultEnd || cfg.Init.V != 0 || cfg.Init.X != 1 {
		t.Errorf("defaults not kept: %+v", cfg)
	}

	law, err := cfg.ForceLaw()
	if err != nil {
		t.Fatal(err)
	}
	if law.GetParams()["gamma"] != 0.37 {
		t.Errorf("override not applied: %v", law.GetParams())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown model", "model: spherical_cow\n", physics.ErrUnknownModel},
		{"unknown param", "params:\n  mu: 3\n", physics.ErrUnknownParam},
		{"zero dt", "dt: 0\n", dynamo.ErrInvalidGrid},
		{"empty interval", "start: 5\nend: 5\n", dynamo.ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Method = "leapfrog"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("van_der_pol", "relaxation")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Params["mu"] != 5 || loaded.Method != "adaptive" || loaded.Init.X != 2 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("damped", "critical")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["beta"] != 1 {
		t.Errorf("expected beta 1, got %v", cfg.Params["beta"])
	}

	cfg.Params["beta"] = 7
	if GetPreset("damped", "critical").Params["beta"] != 1 {
		t.Error("modifying a preset copy changed the table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("damped", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "small"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for model, presets := range Presets {
		if _, err := physics.New(model); err != nil {
			t.Errorf("preset group %s: %v", model, err)
		}
		for _, name := range ListPresets(model) {
			if err := presets[name].Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}
