package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/predprey/internal/analysis"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/experiment"
	"github.com/san-kum/predprey/internal/export"
	"github.com/san-kum/predprey/internal/models"
	"github.com/san-kum/predprey/internal/scenario"
	"github.com/san-kum/predprey/internal/storage"
	"github.com/san-kum/predprey/internal/sweep"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("running holling-tanner simulation (%s, t_max=%g, %d points)...\n", cfg.Integrator, cfg.TMax, cfg.Points)
	res, err := experiment.New(cfg, nil, simOptions()...).Run(cmd.Context())
	if err != nil {
		return err
	}
	traj := res.Trajectory

	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("steps: %d accepted, %d rejected, %d evaluations\n", traj.Stats.Steps, traj.Stats.Rejected, traj.Stats.Evaluations)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, traj, res.Elapsed)
		if err != nil {
			return err
		}
		logger.Info().Str("run", runID).Str("dir", dataDir).Msg("run saved")
		fmt.Printf("run id: %s\n", runID)
	}

	if csvPath != "" {
		if err := writeOutput(csvPath, func(w io.Writer) error { return storage.WriteCSV(w, traj) }); err != nil {
			return err
		}
		fmt.Printf("data saved to %s\n", csvPath)
	}

	fmt.Println()
	printSummary(analysis.Summarize(traj))

	if !noPlot {
		fmt.Println()
		printSeries(traj)
	}
	return nil
}

func printSummary(s analysis.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tMIN\tMAX\tMEAN\tSTD\tFINAL\tPERIOD")
	for _, row := range []struct {
		name string
		st   analysis.SeriesStats
	}{{"prey", s.Prey}, {"predator", s.Predator}} {
		period := "-"
		if row.st.Period > 0 {
			period = fmt.Sprintf("%.3f", row.st.Period)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			row.name, row.st.Min, row.st.Max, row.st.Mean, row.st.StdDev, row.st.Final, period)
	}
	w.Flush()
}

func printSeries(traj *dynamo.Trajectory) {
	if traj.Len() < 2 {
		return
	}
	for _, series := range []struct {
		idx     int
		caption string
	}{
		{models.Prey, "prey population N(t)"},
		{models.Predator, "predator population P(t)"},
	} {
		graph := asciigraph.Plot(traj.Column(series.idx),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

// writeOutput sends fn's output to path, or to stdout for "" and "-".
func writeOutput(path string, fn func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return err
	}
	return f.Close()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, traj, nil
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tINTEG\tPOINTS\tT_MAX\tFINAL N\tFINAL P")

	for _, run := range runs {
		var finalN, finalP float64
		if len(run.Final) == 2 {
			finalN, finalP = run.Final[models.Prey], run.Final[models.Predator]
		}
		tm := 0.0
		if run.Config != nil {
			tm = run.Config.TMax
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%.4f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Points,
			tm,
			finalN,
			finalP,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("integrator: %s\n", meta.Integrator)
	fmt.Printf("samples: %d\n\n", traj.Len())
	printSeries(traj)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.PreyPredatorPortrait(traj)
	minX, maxX, minY, maxY := portrait.Bounds()

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("prey [%.3f, %.3f]  predator [%.3f, %.3f]\n\n", minX, maxX, minY, maxY)
	fmt.Print(portrait.ToASCII(width, height))
	fmt.Println("\no start  * end  x: prey  y: predator")
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)
	printSummary(analysis.Summarize(traj))

	start := int(analysis.PeriodTransient * float64(traj.Len()))
	ps := analysis.PowerSpectrum(traj.Column(models.Prey)[start:])
	if len(ps) > 4 {
		shown := ps[1:max(2, len(ps)/4)]
		fmt.Println()
		fmt.Println(asciigraph.Plot(shown,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum of prey (post-transient, bins 1..n/4)"),
		))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return writeOutput(outPath, func(w io.Writer) error { return storage.WriteCSV(w, traj) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return writeOutput(outPath, func(w io.Writer) error { return storage.ExportJSON(w, meta, traj) })
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgKind {
	case "series":
		svg = export.TimeSeriesSVG(traj, svgWidth, svgHeight)
	case "phase":
		svg = export.PhaseSVG(analysis.PreyPredatorPortrait(traj), svgWidth, svgHeight)
	default:
		return fmt.Errorf("unknown svg kind %q (want series or phase)", svgKind)
	}
	if svg == "" {
		return fmt.Errorf("run %s has too few points to draw", args[0])
	}

	return writeOutput(outPath, func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	axes := make([]sweep.Axis, 0, len(sweepAxes))
	for _, s := range sweepAxes {
		axis, err := sweep.ParseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}

	sw := sweep.New(cfg, axes, workers, simOptions()...)

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = fmt.Sprintf(" simulating %d combinations...", sw.Size())
	sp.Start()
	start := time.Now()
	results, err := sw.Run(cmd.Context())
	sp.Stop()
	if err != nil {
		return err
	}

	fmt.Printf("%d simulations in %v\n\n", len(results), time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	names := make([]string, len(axes))
	for i, a := range axes {
		names[i] = strings.ToUpper(a.Name)
	}
	fmt.Fprintf(w, "%s\tFINAL N\tFINAL P\tMIN N\tMIN P\tMAX P\n", strings.Join(names, "\t"))

	failed := 0
	for _, p := range results {
		vals := make([]string, len(axes))
		for i, a := range axes {
			vals[i] = fmt.Sprintf("%g", p.Values[a.Name])
		}
		if p.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\n", strings.Join(vals, "\t"), p.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", strings.Join(vals, "\t"),
			p.Final[models.Prey], p.Final[models.Predator], p.PreyMin, p.PredatorMin, p.PredatorMax)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		logger.Warn().Int("failed", failed).Int("total", len(results)).Msg("sweep had failures")
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	// The reference is always a tight rk45 run.
	refCfg := base.Clone()
	refCfg.Integrator = "rk45"
	refCfg.Solver = config.SolverConfig{}
	ref, err := experiment.New(refCfg, nil, simOptions()...).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("reference run: %w", err)
	}

	fmt.Printf("comparing integrators (t_max=%g, %d points)\n\n", base.TMax, base.Points)
	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-8s  %-10s\n", "integrator", "final_N", "final_P", "max_dev", "steps", "time_ms")
	fmt.Println(strings.Repeat("-", 72))

	for _, name := range names {
		cfg := base.Clone()
		cfg.Integrator = name
		res, err := experiment.New(cfg, nil, simOptions()...).Run(cmd.Context())
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		final := res.Trajectory.Final()
		fmt.Printf("%-10s  %12.6f  %12.6f  %12.2e  %8d  %10.2f\n",
			name, final[models.Prey], final[models.Predator],
			maxDeviation(ref.Trajectory, res.Trajectory),
			res.Trajectory.Stats.Steps,
			float64(res.Elapsed.Microseconds())/1000)
	}
	return nil
}

// maxDeviation is the largest componentwise gap between two trajectories
// on the same grid.
func maxDeviation(a, b *dynamo.Trajectory) float64 {
	dev := 0.0
	for i := range min(len(a.States), len(b.States)) {
		dev = math.Max(dev, a.States[i].Sub(b.States[i]).Norm())
	}
	return dev
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	runner := &scenario.Runner{
		Store:   st,
		Options: simOptions(),
		Progress: func(i, total int, step scenario.Step) {
			logger.Info().Int("step", i+1).Int("total", total).Str("name", step.Name).Msg("running step")
		},
	}
	results, runErr := runner.Run(cmd.Context(), sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tINTEG\tT_MAX\tFINAL N\tFINAL P\tRUN")
	for _, r := range results {
		final := r.Result.Trajectory.Final()
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%.4f\t%.4f\t%s\n",
			r.Name, r.Result.Config.Integrator, r.Result.Config.TMax,
			final[models.Prey], final[models.Predator], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN0\tP0\tT_MAX\tPARAMS")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		p := cfg.Params
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\tr=%g K=%g a=%g h=%g m=%g c=%g d=%g\n",
			name, cfg.InitState.Prey, cfg.InitState.Predator, cfg.TMax,
			p.R, p.K, p.A, p.H, p.M, p.C, p.D)
	}
	return w.Flush()
}
