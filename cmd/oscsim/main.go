package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	model      string
	method     string
	dt         float64
	start      float64
	end        float64
	x0         float64
	v0         float64
	params     []string
	bound      float64
	rtol       float64
	atol       float64

	width  int
	height int
	out    string
)

// main registers the commands and runs the model picker when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "oscsim",
		Short:         "one-dimensional oscillator integration engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".oscsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a force law and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().Bool("no-save", false, "print metrics without storing the run")
	runCmd.Flags().Bool("plot", false, "plot the position after the run")

	compareCmd := &cobra.Command{
		Use:   "compare [method...]",
		Short: "integrate the same configuration with several methods",
		RunE:  compareMethods,
	}
	addConfigFlags(compareCmd)
	addSizeFlags(compareCmd)

	convergenceCmd := &cobra.Command{
		Use:   "convergence [method...]",
		Short: "estimate the order of accuracy of fixed-step methods",
		RunE:  convergence,
	}
	addConfigFlags(convergenceCmd)
	convergenceCmd.Flags().Float64Slice("dts", []float64{0.04, 0.02, 0.01, 0.005}, "step sizes")
	convergenceCmd.Flags().StringVar(&out, "png", "", "write a log-log error plot to this file")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  lyapunov,
	}
	addConfigFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64("eps", 1e-8, "initial separation")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep a constant and sample once per drive period",
		Args:  cobra.NoArgs,
		RunE:  bifurcation,
	}
	addConfigFlags(bifurcationCmd)
	addSizeFlags(bifurcationCmd)
	bifurcationCmd.Flags().String("sweep", "A", "constant to sweep")
	bifurcationCmd.Flags().Float64("min", 0.9, "sweep start")
	bifurcationCmd.Flags().Float64("max", 1.5, "sweep end")
	bifurcationCmd.Flags().Int("steps", 60, "number of sweep values")
	bifurcationCmd.Flags().Float64("transient", 200, "time discarded before sampling")
	bifurcationCmd.Flags().Float64("record", 100, "time sampled after the transient")
	bifurcationCmd.Flags().Float64("period", 0, "sampling period (default 2*pi/omega)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the configuration across a range of one constant",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().String("sweep", "beta", "constant to sweep")
	sweepCmd.Flags().Float64("min", 0, "sweep start")
	sweepCmd.Flags().Float64("max", 1, "sweep end")
	sweepCmd.Flags().Int("steps", 11, "number of sweep values")
	sweepCmd.Flags().Int("workers", 0, "concurrent runs (0 = unbounded)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search constants for the best value of a metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArray("grid", nil, "search axis, name=v1,v2,... (repeatable)")
	searchCmd.Flags().String("metric", "energy_drift", "metric to optimize")
	searchCmd.Flags().Bool("maximize", false, "maximize instead of minimize")
	searchCmd.Flags().Int("workers", 0, "concurrent runs (0 = unbounded)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run an ensemble from perturbed initial states",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64("perturbation", 0.01, "maximum initial state perturbation")
	monteCarloCmd.Flags().Int("trials", 100, "number of trials")
	monteCarloCmd.Flags().Uint64("seed", 1, "random seed")
	monteCarloCmd.Flags().Int("workers", 0, "concurrent runs (0 = unbounded)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a YAML scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step a force law in real time",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot position and velocity of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addSizeFlags(plotCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	addSizeFlags(phaseCmd)
	phaseCmd.Flags().Float64("section", 0, "also show the x = value crossing section")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrum,
	}
	addSizeFlags(spectrumCmd)

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render a stored run to PNG figures",
		Args:  cobra.ExactArgs(1),
		RunE:  renderPNG,
	}
	pngCmd.Flags().StringVar(&out, "out", "", "output prefix (default run id)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the phase portrait of a stored run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVar(&out, "out", "", "output file (default <run id>.svg)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list force laws and integration methods",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, compareCmd, convergenceCmd, lyapunovCmd, bifurcationCmd,
		sweepCmd, searchCmd, monteCarloCmd, scenarioCmd, liveCmd,
		listCmd, plotCmd, phaseCmd, spectrumCmd, pngCmd, svgCmd, exportJSONCmd, exportCSVCmd,
		modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func addConfigFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&model, "model", def.Model, "force law")
	f.StringVar(&method, "method", def.Method, "integration method")
	f.Float64Var(&dt, "dt", def.Dt, "time step")
	f.Float64Var(&start, "start", def.Start, "start time")
	f.Float64Var(&end, "end", def.End, "end time")
	f.Float64Var(&x0, "x0", def.Init.X, "initial position")
	f.Float64Var(&v0, "v0", def.Init.V, "initial velocity")
	f.StringArrayVar(&params, "param", nil, "override a constant, name=value (repeatable)")
	f.Float64Var(&bound, "bound", def.Bound, "divergence bound (0 checks finiteness only)")
	f.Float64Var(&rtol, "rtol", def.Adaptive.RelTol, "adaptive relative tolerance")
	f.Float64Var(&atol, "atol", def.Adaptive.AbsTol, "adaptive absolute tolerance")
}

func addSizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
}

// resolveConfig layers defaults, then a preset, then a config file, then
// explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	flags := cmd.Flags()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, model, config.ListPresets(model))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("model") {
		if cfg.Model != model {
			cfg.Params = nil
		}
		cfg.Model = model
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("end") {
		cfg.End = end
	}
	if flags.Changed("x0") {
		cfg.Init.X = x0
	}
	if flags.Changed("v0") {
		cfg.Init.V = v0
	}
	if flags.Changed("bound") {
		cfg.Bound = bound
	}
	if flags.Changed("rtol") {
		cfg.Adaptive.RelTol = rtol
	}
	if flags.Changed("atol") {
		cfg.Adaptive.AbsTol = atol
	}

	overrides, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(overrides))
	}
	for k, v := range overrides {
		cfg.Params[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("resolved config", "model", cfg.Model, "method", cfg.Method, "dt", cfg.Dt,
		"start", cfg.Start, "end", cfg.End, "params", cfg.Params)
	return cfg, nil
}

func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", p, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
