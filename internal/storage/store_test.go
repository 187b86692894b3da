package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Times:   []float64{0, 0.1, 0.2},
		States:  dynamo.Trajectory{{0.2, 0}, {0.198, -0.02}, {1.0 / 3.0, -0.0399}},
		Metrics: map[string]float64{"energy": 0.02, "energy_drift": math.Inf(1)},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Params = map[string]float64{"omega0": 2}
	result := sampleResult()

	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "simple_harmonic" || meta.Method != "euler-cromer" {
		t.Errorf("unexpected model/method %s/%s", meta.Model, meta.Method)
	}
	if meta.Points != 3 || meta.Params["omega0"] != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy"] != 0.02 {
		t.Errorf("expected energy 0.02, got %v", meta.Metrics["energy"])
	}
	if len(meta.NonFinite) != 1 || meta.NonFinite[0] != "energy_drift" {
		t.Errorf("expected energy_drift flagged non-finite, got %v", meta.NonFinite)
	}

	times, traj, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(times) != 3 || len(traj) != 3 {
		t.Fatalf("expected 3 rows, got %d times and %d states", len(times), len(traj))
	}
	for i := range traj {
		if traj[i] != result.States[i] || times[i] != result.Times[i] {
			t.Errorf("row %d: got (%v, %v), want (%v, %v)", i, times[i], traj[i], result.Times[i], result.States[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.Save(config.DefaultConfig(), sampleResult())
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := os.Mkdir(filepath.Join(st.Dir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, r := range runs {
		if r.ID != ids[i] {
			t.Errorf("run %d: got %s, want %s", i, r.ID, ids[i])
		}
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, _, err := st.LoadStates("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadStates: expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	result := sampleResult()
	result.States[2][1] = math.NaN()

	var buf bytes.Buffer
	if err := ExportJSON(&buf, config.DefaultConfig(), result); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded struct {
		Model   string              `json:"model"`
		Points  int                 `json:"points"`
		States  [][2]*float64       `json:"states"`
		Metrics map[string]*float64 `json:"metrics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Model != "simple_harmonic" || decoded.Points != 3 {
		t.Errorf("unexpected header %+v", decoded)
	}
	if decoded.States[2][1] != nil {
		t.Errorf("NaN velocity should encode as null, got %v", *decoded.States[2][1])
	}
	if decoded.Metrics["energy_drift"] != nil {
		t.Error("infinite metric should encode as null")
	}
	if *decoded.States[1][0] != 0.198 {
		t.Errorf("x[1] = %v", *decoded.States[1][0])
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "time,x,v" {
		t.Fatalf("unexpected CSV:\n%s", buf.String())
	}
	if lines[1] != "0,0.2,0" {
		t.Errorf("first row = %q", lines[1])
	}
}
