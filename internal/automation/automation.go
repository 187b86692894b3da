package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/sim"
	"github.com/san-kum/oscsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. Keys left out of the file keep their
// defaults from config.DefaultConfig.
type Step struct {
	config.Config `yaml:",inline"`
	Label         string `yaml:"label"`
	Save          bool   `yaml:"save"`
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	p := plain{Config: *config.DefaultConfig()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	return nil
}

// LoadScenario loads a scenario from a YAML file and validates every step.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	for i := range scenario.Steps {
		if err := scenario.Steps[i].Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", path, i+1, err)
		}
	}
	return &scenario, nil
}

type StepResult struct {
	Label  string
	Result *sim.Result
	// RunID is set when the step was saved.
	RunID string
}

// RunScenario executes the steps in order. Steps marked save are written to
// st, which may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Label
		if label == "" {
			label = fmt.Sprintf("%s/%s", step.Model, step.Method)
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "label", label)

		cfg := step.Config.Clone()
		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Label: label, Result: result}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			if sr.RunID, err = st.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one configuration across a range of values of one constant.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	// Workers caps concurrent runs; 0 means unbounded.
	Workers int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	Metrics    map[string]float64
}

// Values returns the evenly spaced sweep values, endpoints included.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}
	}
	vals := make([]float64, s.NumSteps)
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	for i := range vals {
		vals[i] = s.ParamMin + float64(i)*step
	}
	return vals
}

// RunSweep executes a parameter sweep; every value gets its own force law.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	values := sweep.Values()

	batch := sim.NewBatch(sweep.Workers)
	for _, v := range values {
		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, 1)
		}
		cfg.Params[sweep.ParamName] = v
		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		batch.Add(sim.Job{Label: fmt.Sprintf("%s=%g", sweep.ParamName, v), Sim: exp.Simulator(), S0: exp.InitialState(), Grid: exp.Grid()})
	}

	runs, err := batch.Run(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{ParamValue: values[i], FinalState: r.States.Final(), Metrics: r.Metrics}
	}
	return results, nil
}

// MonteCarloConfig perturbs the initial state of Base uniformly by up to
// Perturbation in both components.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         uint64
	// Bound marks a trial unstable once the final state leaves it; 0 means 1e6.
	Bound   float64
	Workers int
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Stable     bool // Did simulation remain bounded?
}

// RunMonteCarlo executes NumTrials runs from perturbed initial states. The
// same seed always yields the same trials.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial")
	}
	exp, err := experiment.New(cfg.Base.Clone())
	if err != nil {
		return nil, err
	}
	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	base := exp.InitialState()
	inits := make([]dynamo.State, cfg.NumTrials)
	batch := sim.NewBatch(cfg.Workers)
	for trial := range inits {
		inits[trial] = dynamo.NewState(
			base[0]+(rng.Float64()-0.5)*2*cfg.Perturbation,
			base[1]+(rng.Float64()-0.5)*2*cfg.Perturbation,
		)
		// Simulators keep per-run metric state, so each trial gets its own.
		trialExp, err := experiment.New(cfg.Base.Clone())
		if err != nil {
			return nil, err
		}
		batch.Add(sim.Job{Label: fmt.Sprintf("trial %d", trial), Sim: trialExp.Simulator(), S0: inits[trial], Grid: exp.Grid()})
	}

	runs, err := batch.Run(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		final := r.States.Final()
		results[i] = MonteCarloResult{
			TrialID:    i,
			InitState:  inits[i],
			FinalState: final,
			Stable:     final.IsValid() && math.Abs(final[0]) <= bound && math.Abs(final[1]) <= bound,
		}
	}
	return results, nil
}

// MonteCarloSummary describes the spread of final positions over stable trials.
type MonteCarloSummary struct {
	Stable, Unstable int
	MeanX, StdX      float64
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	var s MonteCarloSummary
	xs := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			s.Stable++
			xs = append(xs, r.FinalState[0])
		} else {
			s.Unstable++
		}
	}
	switch len(xs) {
	case 0:
		s.MeanX, s.StdX = math.NaN(), math.NaN()
	case 1:
		s.MeanX = xs[0]
	default:
		s.MeanX, s.StdX = stat.MeanStdDev(xs, nil)
	}
	return s
}
