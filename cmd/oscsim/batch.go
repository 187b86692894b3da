package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/automation"
	"github.com/san-kum/oscsim/internal/optim"
	"github.com/san-kum/oscsim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(runContext(cmd), sc, st)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	t := newTable()
	t.AppendHeader(table.Row{"STEP", "POINTS", "STABILITY", "ENERGY DRIFT", "RUN ID"})
	for _, r := range results {
		drift := "-"
		if d, ok := r.Result.Metrics["energy_drift"]; ok {
			drift = fmt.Sprintf("%.3e", d)
		}
		t.AppendRow(table.Row{r.Label, len(r.Result.States), fmt.Sprintf("%.3f", r.Result.Metrics["stability"]), drift, r.RunID})
	}
	t.Render()
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	sweep := &automation.ParameterSweep{Base: cfg}
	sweep.ParamName, _ = f.GetString("sweep")
	sweep.ParamMin, _ = f.GetFloat64("min")
	sweep.ParamMax, _ = f.GetFloat64("max")
	sweep.NumSteps, _ = f.GetInt("steps")
	sweep.Workers, _ = f.GetInt("workers")

	results, err := automation.RunSweep(runContext(cmd), sweep)
	if err != nil {
		return err
	}

	t := newTable()
	t.AppendHeader(table.Row{strings.ToUpper(sweep.ParamName), "FINAL X", "FINAL V", "AMPLITUDE", "ENERGY"})
	for _, r := range results {
		energy := "-"
		if e, ok := r.Metrics["energy"]; ok {
			energy = fmt.Sprintf("%.4g", e)
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%.4g", r.ParamValue),
			fmt.Sprintf("%+.5f", r.FinalState[0]),
			fmt.Sprintf("%+.5f", r.FinalState[1]),
			fmt.Sprintf("%.4g", r.Metrics["amplitude"]),
			energy,
		})
	}
	t.Render()
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	mc := &automation.MonteCarloConfig{Base: cfg, Bound: cfg.Bound}
	mc.Perturbation, _ = f.GetFloat64("perturbation")
	mc.NumTrials, _ = f.GetInt("trials")
	mc.Seed, _ = f.GetUint64("seed")
	mc.Workers, _ = f.GetInt("workers")

	results, err := automation.RunMonteCarlo(runContext(cmd), mc)
	if err != nil {
		return err
	}
	s := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d (stable %d, unstable %d)\n", len(results), s.Stable, s.Unstable)
	fmt.Printf("final x: mean %.6g, std %.6g\n", s.MeanX, s.StdX)
	return nil
}

// parseGrid reads "name=v1,v2,..." into a search axis.
func parseGrid(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --grid %q, want name=v1,v2,...", spec)
	}
	fields := strings.Split(list, ",")
	vals := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --grid %q: %w", spec, err)
		}
		vals[i] = v
	}
	return strings.TrimSpace(name), vals, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	specs, _ := f.GetStringArray("grid")
	if len(specs) == 0 {
		return fmt.Errorf("at least one --grid axis is required")
	}
	names := make([]string, len(specs))
	ranges := make([][]float64, len(specs))
	for i, spec := range specs {
		if names[i], ranges[i], err = parseGrid(spec); err != nil {
			return err
		}
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize, _ = f.GetBool("maximize")
	g.Workers, _ = f.GetInt("workers")
	metric, _ := f.GetString("metric")

	best, all, err := g.Search(runContext(cmd), cfg, metric)
	if err != nil {
		return err
	}

	t := newTable()
	header := table.Row{}
	for _, n := range names {
		header = append(header, strings.ToUpper(n))
	}
	t.AppendHeader(append(header, strings.ToUpper(metric)))
	for _, c := range all {
		row := table.Row{}
		for _, n := range names {
			row = append(row, c.Params[n])
		}
		t.AppendRow(append(row, fmt.Sprintf("%.6g", c.Value)))
	}
	t.Render()

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, best.Params[n])
	}
	fmt.Printf("\nbest: %s (%s = %.6g)\n", strings.Join(parts, " "), metric, best.Value)
	return nil
}
