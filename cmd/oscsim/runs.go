package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/export"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/sim"
	"github.com/san-kum/oscsim/internal/storage"
	"github.com/san-kum/oscsim/internal/viz"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s with %s...\n", cfg.Model, exp.Method())
	result, err := exp.Run(runContext(cmd))
	if err != nil {
		return err
	}
	if result.Divergence != nil {
		slog.Warn("trajectory left the sanity bound", "err", result.Divergence)
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("points: %d\n", len(result.States))
	if exp.Method() == integrators.AdaptiveMethod {
		fmt.Printf("steps: %d accepted, %d rejected\n", result.Stats.Steps, result.Stats.Rejected)
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)

	if show, _ := cmd.Flags().GetBool("plot"); show {
		fmt.Println()
		fmt.Println(viz.TimeSeries(result.Times, result.States, viz.Position, 80, 12, cfg.Model))
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable()
	t.AppendHeader(table.Row{"METRIC", "VALUE"})
	for _, name := range names {
		t.AppendRow(table.Row{name, fmt.Sprintf("%.6g", m[name])})
	}
	t.Render()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "MODEL", "METHOD", "TIME", "INTERVAL", "DT", "POINTS"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.Model,
			run.Method,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("[%g, %g]", run.Start, run.End),
			run.Dt,
			run.Points,
		})
	}
	t.Render()
	return nil
}

// loadRun rebuilds the configuration and result of a stored run.
func loadRun(runID string) (*config.Config, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	times, traj, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(traj) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}

	cfg := config.DefaultConfig()
	cfg.Model, cfg.Method = meta.Model, meta.Method
	cfg.Dt, cfg.Start, cfg.End = meta.Dt, meta.Start, meta.End
	cfg.Init.X, cfg.Init.V = meta.Init[0], meta.Init[1]
	cfg.Params = meta.Params

	return cfg, &sim.Result{Times: times, States: traj, Metrics: meta.Metrics, Stats: meta.Stats}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("model: %s (%s, dt=%g)\n", cfg.Model, cfg.Method, cfg.Dt)
	fmt.Printf("samples: %d\n\n", len(result.States))

	fmt.Println(viz.TimeSeries(result.Times, result.States, viz.Position, width, height, "x (position)"))
	fmt.Println()
	fmt.Println(viz.TimeSeries(result.Times, result.States, viz.Velocity, width, height, "v (velocity)"))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(result.States)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, width, height))

	if cmd.Flags().Changed("section") {
		threshold, _ := cmd.Flags().GetFloat64("section")
		section := analysis.CrossingSection(result.States, threshold)
		fmt.Printf("\n%d crossings of x = %g\n", len(section.Points), threshold)
		fmt.Println(analysis.PoincareSectionToASCII(section, width, height))
	}
	return nil
}

func spectrum(cmd *cobra.Command, args []string) error {
	cfg, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	xs := result.States.Positions()
	freq, err := analysis.DominantFrequency(xs, cfg.Dt)
	if err != nil {
		return err
	}
	_, power := analysis.Spectrum(xs, cfg.Dt)

	fmt.Printf("dominant frequency: %.6g Hz (period %.6g)\n\n", freq, 1/freq)
	fmt.Println(viz.Spectrum(power, width, height))
	return nil
}

func renderPNG(cmd *cobra.Command, args []string) error {
	cfg, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	prefix := out
	if prefix == "" {
		prefix = args[0]
	}

	opts := viz.DefaultPNGOptions()
	title := fmt.Sprintf("%s (%s, dt=%g)", cfg.Model, cfg.Method, cfg.Dt)
	series := []viz.Series{{Label: "x", Times: result.Times, Traj: result.States}}
	if err := viz.SaveTimeSeriesPNG(prefix+"_series.png", title, series, opts); err != nil {
		return err
	}
	if err := viz.SavePhasePNG(prefix+"_phase.png", title, result.States, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s_series.png and %s_phase.png\n", prefix, prefix)
	return nil
}

func renderSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := out
	if path == "" {
		path = args[0] + ".svg"
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.PhaseSVG(f, result.States, 800, 600, export.DefaultStyle()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, cfg, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, result)
}

// runContext falls back to Background when cobra was executed without one.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
