package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/physics"
)

func TestRunDefaultConfig(t *testing.T) {
	exp, err := New(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.States) != 600 {
		t.Errorf("expected 600 states, got %d", len(result.States))
	}
	for _, name := range []string{"energy", "energy_drift", "stability", "amplitude"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("small oscillation flagged unstable: %v", result.Metrics["stability"])
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "nope"
	if _, err := New(cfg); !errors.Is(err, physics.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Method = "adaptive"
	cfg.Adaptive.RelTol = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected error for zero tolerance")
	}
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	if len(cat) != len(physics.Names()) {
		t.Fatalf("catalog has %d entries, want %d", len(cat), len(physics.Names()))
	}
	for _, m := range cat {
		if m.Description == "" || len(m.Params) == 0 {
			t.Errorf("%s: incomplete entry %+v", m.Name, m)
		}
		if len(m.Presets) == 0 {
			t.Errorf("%s: no presets", m.Name)
		}
	}
}
