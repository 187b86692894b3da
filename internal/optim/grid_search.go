// Package optim searches force-law constants for the best value of a run metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/sim"
)

// GridSearch evaluates every combination of the candidate values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize flips the objective; the default minimizes.
	Maximize bool
	Workers  int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated combination.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Search runs base once per combination and returns the combination with
// the best finite value of metricName, plus every evaluated candidate in
// enumeration order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Candidate, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("optim: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	combos := g.combinations(0, map[string]float64{}, nil)
	if len(combos) == 0 {
		return nil, nil, fmt.Errorf("optim: empty search space")
	}

	batch := sim.NewBatch(g.Workers)
	for _, params := range combos {
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for k, v := range params {
			cfg.Params[k] = v
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		batch.Add(sim.Job{Sim: exp.Simulator(), S0: exp.InitialState(), Grid: exp.Grid()})
	}

	runs, err := batch.Run(ctx)
	if err != nil {
		return nil, nil, err
	}

	all := make([]Candidate, len(runs))
	var best *Candidate
	for i, r := range runs {
		val, ok := r.Metrics[metricName]
		if !ok {
			return nil, nil, fmt.Errorf("optim: metric %q not reported for %s", metricName, base.Model)
		}
		all[i] = Candidate{Params: combos[i], Value: val}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		if best == nil || g.better(val, best.Value) {
			best = &all[i]
		}
	}
	if best == nil {
		return nil, all, fmt.Errorf("optim: no combination produced a finite %s", metricName)
	}
	return best, all, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) combinations(depth int, current map[string]float64, out []map[string]float64) []map[string]float64 {
	if depth == len(g.paramNames) {
		combo := make(map[string]float64, len(current))
		for k, v := range current {
			combo[k] = v
		}
		return append(out, combo)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		out = g.combinations(depth+1, current, out)
	}
	delete(current, paramName)
	return out
}
