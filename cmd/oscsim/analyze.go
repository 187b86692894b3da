package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/sim"
	"github.com/san-kum/oscsim/internal/viz"
)

// stepperFor returns a per-step stepper for cfg's method. The adaptive method
// refines inside every step with the configured tolerances.
func stepperFor(cfg *config.Config) (dynamo.Stepper, error) {
	m, err := integrators.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if m == integrators.AdaptiveMethod {
		return integrators.NewRK45WithOptions(cfg.AdaptiveOptions()), nil
	}
	return integrators.FixedStepper(m)
}

func fixedMethods() []string {
	var out []string
	for _, m := range integrators.Methods() {
		if m != string(integrators.AdaptiveMethod) {
			out = append(out, m)
		}
	}
	return out
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	methods := args
	if len(methods) == 0 {
		methods = integrators.Methods()
	}

	batch := sim.NewBatch(0)
	for _, m := range methods {
		c := cfg.Clone()
		c.Method = m
		exp, err := experiment.New(c)
		if err != nil {
			return err
		}
		batch.Add(sim.Job{Label: m, Sim: exp.Simulator(), S0: exp.InitialState(), Grid: exp.Grid()})
	}

	results, err := batch.Run(runContext(cmd))
	if err != nil {
		return err
	}

	t := newTable()
	t.AppendHeader(table.Row{"METHOD", "FINAL X", "FINAL V", "ENERGY DRIFT", "STABILITY", "ELAPSED"})
	trajs := make([]dynamo.Trajectory, len(results))
	for i, r := range results {
		final := r.States.Final()
		drift := "-"
		if d, ok := r.Metrics["energy_drift"]; ok {
			drift = fmt.Sprintf("%.3e", d)
		}
		t.AppendRow(table.Row{
			methods[i],
			fmt.Sprintf("%+.6f", final[0]),
			fmt.Sprintf("%+.6f", final[1]),
			drift,
			fmt.Sprintf("%.3f", r.Metrics["stability"]),
			r.Elapsed,
		})
		trajs[i] = r.States
	}
	t.Render()

	fmt.Println()
	fmt.Println(viz.Compare(trajs, viz.Position, width, height, strings.Join(methods, " / ")))
	return nil
}

func convergence(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	dts, err := cmd.Flags().GetFloat64Slice("dts")
	if err != nil {
		return err
	}
	methods := args
	if len(methods) == 0 {
		methods = fixedMethods()
	}
	law, err := cfg.ForceLaw()
	if err != nil {
		return err
	}

	t := newTable()
	header := table.Row{"METHOD", "ORDER"}
	for _, dt := range dts {
		header = append(header, fmt.Sprintf("err(dt=%g)", dt))
	}
	t.AppendHeader(header)

	for _, name := range methods {
		m, err := integrators.ParseMethod(name)
		if err != nil {
			return err
		}
		conv, err := analysis.EstimateOrder(runContext(cmd), m, law, cfg.InitialState(), cfg.End, dts)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}

		row := table.Row{string(m), fmt.Sprintf("%.2f", conv.Order)}
		errs := make(map[float64]float64, len(conv.Points))
		pdts, perrs := make([]float64, 0, len(conv.Points)), make([]float64, 0, len(conv.Points))
		for _, p := range conv.Points {
			errs[p.Dt] = p.Error
			pdts, perrs = append(pdts, p.Dt), append(perrs, p.Error)
		}
		for _, dt := range dts {
			row = append(row, fmt.Sprintf("%.3e", errs[dt]))
		}
		t.AppendRow(row)

		if out != "" {
			path := out
			if len(methods) > 1 {
				path = strings.TrimSuffix(out, ".png") + "_" + string(m) + ".png"
			}
			title := fmt.Sprintf("%s on %s (order %.2f)", m, cfg.Model, conv.Order)
			if err := viz.SaveConvergencePNG(path, title, pdts, perrs, viz.DefaultPNGOptions()); err != nil {
				return err
			}
		}
	}
	t.Render()
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	law, err := cfg.ForceLaw()
	if err != nil {
		return err
	}
	st, err := stepperFor(cfg)
	if err != nil {
		return err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return err
	}
	eps, _ := cmd.Flags().GetFloat64("eps")

	lambda, err := analysis.LyapunovExponent(st, law, cfg.InitialState(), grid, eps)
	if err != nil {
		return err
	}
	fmt.Printf("largest Lyapunov exponent: %.6f\n", lambda)
	if lambda > 0.01 {
		fmt.Println("trajectory is chaotic")
	}
	return nil
}

func bifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	law, err := cfg.ForceLaw()
	if err != nil {
		return err
	}
	st, err := stepperFor(cfg)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	sweep := analysis.BifurcationSweep{Dt: cfg.Dt}
	sweep.Param, _ = f.GetString("sweep")
	sweep.Min, _ = f.GetFloat64("min")
	sweep.Max, _ = f.GetFloat64("max")
	sweep.Steps, _ = f.GetInt("steps")
	sweep.Transient, _ = f.GetFloat64("transient")
	sweep.Record, _ = f.GetFloat64("record")
	sweep.Period, _ = f.GetFloat64("period")
	if sweep.Period == 0 {
		omega, ok := law.GetParams()["omega"]
		if !ok || omega == 0 {
			return fmt.Errorf("%s has no drive frequency, set --period", law.Name())
		}
		sweep.Period = 2 * math.Pi / omega
	}

	points, err := analysis.BifurcationDiagram(runContext(cmd), law, st, cfg.InitialState(), sweep)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s from %g to %g\n\n", law.Name(), sweep.Param, sweep.Min, sweep.Max)
	fmt.Println(analysis.BifurcationToASCII(points, width, height))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	law, err := cfg.ForceLaw()
	if err != nil {
		return err
	}
	st, err := stepperFor(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(viz.NewModel(law, st, cfg.Method, cfg.InitialState(), cfg.Dt))
}

func listModels(cmd *cobra.Command, args []string) error {
	t := newTable()
	t.AppendHeader(table.Row{"MODEL", "DESCRIPTION", "CONSTANTS", "PRESETS"})
	for _, info := range experiment.Catalog() {
		keys := make([]string, 0, len(info.Params))
		for k := range info.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		consts := make([]string, len(keys))
		for i, k := range keys {
			consts[i] = fmt.Sprintf("%s=%g", k, info.Params[k])
		}
		t.AppendRow(table.Row{info.Name, info.Description, strings.Join(consts, " "), strings.Join(info.Presets, ", ")})
	}
	t.Render()
	fmt.Printf("\nmethods: %s\n", strings.Join(experiment.Methods(), ", "))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, name := range presets {
		p := config.GetPreset(args[0], name)
		fmt.Printf("  %-14s %s dt=%g end=%g x0=%g v0=%g\n", name, p.Method, p.Dt, p.End, p.Init.X, p.Init.V)
	}
	return nil
}
