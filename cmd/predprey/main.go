package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/logging"
	"github.com/san-kum/predprey/internal/metrics"
	"github.com/san-kum/predprey/internal/models"
	"github.com/san-kum/predprey/internal/sim"
	"github.com/san-kum/predprey/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	logLevel    string
	metricsFile string

	configFile string
	preset     string
	integrator string
	// Model parameters, indexed like models.ParamNames.
	paramFlags [7]float64
	n0         float64
	p0         float64
	tMax       float64
	points     int
	rtol       float64
	atol       float64
	maxSteps   int
	step       float64

	csvPath string
	noSave  bool
	noPlot  bool

	outPath   string
	svgKind   string
	svgWidth  int
	svgHeight int
	width     int
	height    int

	sweepAxes []string
	workers   int
)

var (
	logger   = zerolog.Nop()
	recorder = metrics.NewRecorder()
)

// main wires the cobra command tree; with no subcommand it opens the
// interactive form. It exits with status 1 when a command fails.
func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:           "predprey",
		Short:         "holling-tanner predator-prey simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.Console(os.Stderr, "predprey").Level(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive(config.DefaultConfig(), simOptions()...)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DataDir(), "data directory (env "+config.EnvDataDir+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel(), "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "also write the trajectory as CSV to this path")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal plots")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot prey and predator against time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "prey-predator phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&width, "width", 70, "canvas width")
	phaseCmd.Flags().IntVar(&height, "height", 24, "canvas height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "population statistics and oscillation period",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output path, - for stdout")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output path, - for stdout")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a time-series or phase plot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output path, - for stdout")
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "series", "plot kind: series or phase")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 450, "image height")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "simulate a grid of parameter values in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepAxes, "param", nil, "swept axis name=start:stop:count (repeatable)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (0 = GOMAXPROCS)")
	_ = sweepCmd.MarkFlagRequired("param")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same run",
		RunE:  compareIntegrators,
	}
	addModelFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive parameter form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			return tui.RunInteractive(cfg, simOptions()...)
		},
	}
	addModelFlags(tuiCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, sweepCmd, compareCmd, scenarioCmd, presetsCmd, tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if metricsFile != "" {
		if werr := recorder.WriteTextfile(metricsFile); werr != nil {
			fmt.Fprintf(os.Stderr, "error: metrics: %v\n", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultLogLevel() string {
	if lvl := config.LogLevel(); lvl != "" {
		return lvl
	}
	return "info"
}

func simOptions() []sim.Option {
	return []sim.Option{sim.WithLogger(logger), sim.WithRecorder(recorder)}
}

func addModelFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()

	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator: rk45, rk4, euler")

	help := map[string]string{
		"r": "prey intrinsic growth rate",
		"K": "prey carrying capacity",
		"a": "predator attack rate",
		"h": "predator handling time",
		"m": "predator mortality rate",
		"c": "conversion efficiency",
		"d": "predator growth-rate coefficient",
	}
	for i, name := range models.ParamNames {
		v, _ := def.Params.Get(name)
		f.Float64Var(&paramFlags[i], name, v, help[name])
	}

	f.Float64Var(&n0, "N0", def.InitState.Prey, "initial prey population")
	f.Float64Var(&p0, "P0", def.InitState.Predator, "initial predator population")
	f.Float64Var(&tMax, "t-max", def.TMax, "simulation horizon")
	f.IntVar(&points, "points", def.Points, "number of output times")
	f.Float64Var(&rtol, "rtol", 0, "relative tolerance (rk45)")
	f.Float64Var(&atol, "atol", 0, "absolute tolerance (rk45)")
	f.IntVar(&maxSteps, "max-steps", 0, "integrator step budget")
	f.Float64Var(&step, "step", 0, "maximum step (rk4, euler)")
}

// buildConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
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

	changed := cmd.Flags().Changed
	for i, name := range models.ParamNames {
		if changed(name) {
			p, err := cfg.Params.With(name, paramFlags[i])
			if err != nil {
				return nil, err
			}
			cfg.Params = p
		}
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("N0") {
		cfg.InitState.Prey = n0
	}
	if changed("P0") {
		cfg.InitState.Predator = p0
	}
	if changed("t-max") {
		cfg.TMax = tMax
	}
	if changed("points") {
		cfg.Points = points
	}
	if changed("rtol") {
		cfg.Solver.RelTol = rtol
	}
	if changed("atol") {
		cfg.Solver.AbsTol = atol
	}
	if changed("max-steps") {
		cfg.Solver.MaxSteps = maxSteps
	}
	if changed("step") {
		cfg.Solver.Step = step
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
