package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	ids     uuid.Generator
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, ids: uuid.NewGen()}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Method    string             `json:"method"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Start     float64            `json:"start"`
	End       float64            `json:"end"`
	Points    int                `json:"points"`
	Init      [2]float64         `json:"init"`
	Params    map[string]float64 `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	// NonFinite names metrics that were NaN or infinite and left out of Metrics.
	NonFinite  []string          `json:"non_finite,omitempty"`
	Stats      integrators.Stats `json:"stats"`
	ElapsedMS  float64           `json:"elapsed_ms"`
	Divergence string            `json:"divergence,omitempty"`
}

func newMetadata(id string, cfg *config.Config, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		ID:        id,
		Model:     cfg.Model,
		Method:    cfg.Method,
		Timestamp: time.Now().UTC(),
		Dt:        cfg.Dt,
		Start:     cfg.Start,
		End:       cfg.End,
		Points:    len(result.States),
		Init:      [2]float64{cfg.Init.X, cfg.Init.V},
		Params:    cfg.Params,
		Metrics:   make(map[string]float64, len(result.Metrics)),
		Stats:     result.Stats,
		ElapsedMS: float64(result.Elapsed) / float64(time.Millisecond),
	}
	for k, v := range result.Metrics {
		if isFinite(v) {
			meta.Metrics[k] = v
		} else {
			meta.NonFinite = append(meta.NonFinite, k)
		}
	}
	sort.Strings(meta.NonFinite)
	if result.Divergence != nil {
		meta.Divergence = result.Divergence.Error()
	}
	return meta
}

// Save writes the metadata and the sampled trajectory of a run and returns its ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	id, err := s.ids.NewV7()
	if err != nil {
		return "", fmt.Errorf("storage: run id: %w", err)
	}
	runID := id.String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newMetadata(runID, cfg, result)); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := ExportCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, csvFile.Sync()
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	// v7 IDs sort by creation time
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads back the time points and trajectory of a run.
func (s *Store) LoadStates(runID string) ([]float64, dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []float64{}, dynamo.Trajectory{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	traj := make(dynamo.Trajectory, 0, len(records)-1)
	for line, record := range records[1:] {
		var row [3]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: run %s line %d: %w", runID, line+2, err)
			}
			row[j] = v
		}
		times = append(times, row[0])
		traj = append(traj, dynamo.NewState(row[1], row[2]))
	}
	return times, traj, nil
}
