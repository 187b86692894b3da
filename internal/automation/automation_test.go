package automation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/storage"
)

const scenarioYAML = `name: damping study
description: light vs heavy damping
steps:
  - model: damped
    method: rk4-joint
    dt: 0.05
    end: 5
    params:
      beta: 0.1
    label: light
  - model: damped
    end: 5
    params:
      beta: 1
    save: true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenarioDefaults(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "damping study" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	second := sc.Steps[1]
	if second.Method != config.DefaultMethod || second.Dt != config.DefaultDt || second.Init.X != config.DefaultX {
		t.Errorf("defaults not applied: %+v", second.Config)
	}
	if second.Adaptive.MaxSteps == 0 {
		t.Error("adaptive defaults lost")
	}
	if sc.Steps[0].Label != "light" || !second.Save {
		t.Errorf("step fields not decoded: %+v", sc.Steps)
	}
}

func TestLoadScenarioRejectsBadStep(t *testing.T) {
	body := "name: bad\nsteps:\n  - model: damped\n    method: leapfrog\n"
	if _, err := LoadScenario(writeScenario(t, body)); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := RunScenario(context.Background(), sc, nil); err == nil {
		t.Error("expected error when saving without a store")
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, st)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Label != "light" || results[1].Label != "damped/euler-cromer" {
		t.Errorf("labels = %q, %q", results[0].Label, results[1].Label)
	}
	if results[0].RunID != "" || results[1].RunID == "" {
		t.Errorf("only the second step should be saved: %q, %q", results[0].RunID, results[1].RunID)
	}
	if len(results[0].Result.States) != 100 {
		t.Errorf("expected 100 states, got %d", len(results[0].Result.States))
	}
	if runs, _ := st.List(); len(runs) != 1 {
		t.Errorf("expected 1 stored run, got %d", len(runs))
	}
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Model = "damped"
	base.Method = "rk4-joint"
	base.Dt = 0.05
	base.End = 10

	sweep := &ParameterSweep{Base: base, ParamName: "beta", ParamMin: 0, ParamMax: 1, NumSteps: 5, Workers: 2}
	results, err := RunSweep(context.Background(), sweep)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].ParamValue <= results[i-1].ParamValue {
			t.Errorf("values out of order: %v", results)
		}
		if results[i].Metrics["energy"] >= results[i-1].Metrics["energy"] {
			t.Errorf("beta=%v: mean energy %v not below %v", results[i].ParamValue, results[i].Metrics["energy"], results[i-1].Metrics["energy"])
		}
	}
	if base.Params != nil {
		t.Error("sweep modified the base config")
	}

	bad := &ParameterSweep{Base: base, ParamName: "mu", ParamMin: 0, ParamMax: 1, NumSteps: 2}
	if _, err := RunSweep(context.Background(), bad); err == nil {
		t.Error("expected error for unknown constant")
	}
}

func TestMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Method = "rk4-joint"
	base.Dt = 0.05
	base.End = 5

	mc := &MonteCarloConfig{Base: base, Perturbation: 0.01, NumTrials: 20, Seed: 7}
	first, err := RunMonteCarlo(context.Background(), mc)
	if err != nil {
		t.Fatal(err)
	}
	again, err := RunMonteCarlo(context.Background(), mc)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].InitState != again[i].InitState || first[i].FinalState != again[i].FinalState {
			t.Fatalf("trial %d differs between identical seeds", i)
		}
		d := first[i].InitState.Sub(base.InitialState())
		if math.Abs(d[0]) > 0.01 || math.Abs(d[1]) > 0.01 {
			t.Errorf("trial %d perturbed by %v", i, d)
		}
	}

	summary := MonteCarloStats(first)
	if summary.Stable != 20 || summary.Unstable != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.StdX <= 0 || summary.StdX > 0.02 {
		t.Errorf("spread of final positions = %v", summary.StdX)
	}
}
