package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/verlet/internal/analysis"
	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/export"
	"github.com/san-kum/verlet/internal/optim"
	"github.com/san-kum/verlet/internal/sim"
	"github.com/san-kum/verlet/internal/storage"
	"github.com/san-kum/verlet/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile  string
	preset      string
	dt          float64
	duration    float64
	seed        int64
	count       int
	radius      float64
	gravity     float64
	iterations  int
	solver      string
	workers     int
	collisions  bool
	sampleEvery int
	validate    bool

	// run
	runs      int
	parallel  int
	noFrames  bool
	sweepArgs []string

	// post-run
	plotMetric    string
	svgMetric     string
	analyzeMetric string
	sweepMetric   string
	xMetric       string
	yMetric       string
	threshold     float64
	frameStep     int64
	framesOut     bool
	outFile       string
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verlet",
		Short: "verlet particle physics lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verlet", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run simulation and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "ensemble size; more than 1 runs seeds seed..seed+runs-1 without storing")
	runCmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "concurrent ensemble runs")
	runCmd.Flags().BoolVar(&noFrames, "no-frames", false, "skip frames.csv")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and metric series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export metric series, or frames, to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&framesOut, "frames", false, "export particle frames instead of metric series")
	exportCSVCmd.Flags().Int64Var(&frameStep, "step", -1, "only frames of this step")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a metric plot to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgMetric, "metric", "kinetic_energy", "metric to plot")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary, settling and frequency analysis of metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "kinetic_energy", "metric for spectrum and settling")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", 1e-3, "settling threshold")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one metric against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xMetric, "x", "kinetic_energy", "metric for the x axis")
	phaseCmd.Flags().StringVar(&yMetric, "y", "collisions", "metric for the y axis")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark step throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "grid search physics parameters against a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScene,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepArgs, "param", nil, "name=v1,v2,... (repeatable; names: "+strings.Join(optim.ParamNames(), ", ")+")")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimize")

	watchCmd := &cobra.Command{
		Use:   "watch [scene]",
		Short: "run a scene with a live metrics dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  watchScene,
	}
	addSceneFlags(watchCmd)

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENE\tPRESETS\tDESCRIPTION")
			for _, name := range registry.ListScenes() {
				s, _ := registry.GetScene(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, strings.Join(config.ListPresets(name), ","), s.Description)
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		analyzeCmd, phaseCmd, benchCmd, sweepCmd, watchCmd, scenesCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", def.Dt, "timestep")
	f.Float64Var(&duration, "time", def.Duration, "duration in simulated time")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	f.IntVar(&count, "particles", def.Particles.Count, "particle count")
	f.Float64Var(&radius, "radius", 0, "particle radius (0 derives it from the fill factor)")
	f.Float64Var(&gravity, "gravity", def.Physics.Gravity, "gravity magnitude")
	f.IntVar(&iterations, "iterations", def.Physics.SpringIterations, "spring relaxation passes per step")
	f.StringVar(&solver, "solver", def.Physics.Solver, "spring solver: gauss-seidel or jacobi")
	f.IntVar(&workers, "workers", def.Physics.Workers, "integration goroutines")
	f.BoolVar(&collisions, "collisions", def.Physics.Collisions, "particle-particle collisions")
	f.IntVar(&sampleEvery, "sample-every", def.SampleEvery, "steps between samples")
	f.BoolVar(&validate, "validate", false, "stop on NaN/Inf state")
}

// loadConfig applies, in order: preset, config file, then explicitly set
// flags.
func loadConfig(cmd *cobra.Command, scene string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scene = scene

	if preset != "" {
		cfg = config.GetPreset(scene, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
		cfg.Scene = scene
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = count
	}
	if flags.Changed("radius") {
		cfg.Particles.Radius = radius
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("iterations") {
		cfg.Physics.SpringIterations = iterations
	}
	if flags.Changed("solver") {
		cfg.Physics.Solver = solver
	}
	if flags.Changed("workers") {
		cfg.Physics.Workers = workers
	}
	if flags.Changed("collisions") {
		cfg.Physics.Collisions = collisions
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	scene := args[0]
	cfg, err := loadConfig(cmd, scene)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	if runs > 1 {
		return runEnsemble(ctx, cfg, registry)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, registry)
	if err := exp.Setup(nil); err != nil {
		return err
	}

	rec, err := st.Begin(scene)
	if err != nil {
		return err
	}
	if !noFrames {
		exp.GetSimulator().AddObserver(rec)
	}

	w := exp.GetSimulator().World()
	fmt.Printf("running %s simulation (%d particles, %d springs)...\n", scene, w.Len(), w.SpringCount())
	start := time.Now()

	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		rec.Close()
		os.RemoveAll(rec.Dir())
		return runErr
	}

	meta, err := rec.Finish(cfg, preset, w, result)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("run " + meta.ID))
	fmt.Println(labelStyle.Render("completed in") + valueStyle.Render(elapsed.String()))
	fmt.Println(labelStyle.Render("steps") + valueStyle.Render(strconv.FormatUint(result.Steps, 10)))
	fmt.Println(labelStyle.Render("contacts") + valueStyle.Render(strconv.Itoa(result.Contacts)))
	fmt.Println(titleStyle.Render("\nmetrics"))
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Println(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	if runErr != nil {
		fmt.Println(warnStyle.Render("\nstopped early: " + runErr.Error()))
	}
	return runErr
}

func runEnsemble(ctx context.Context, cfg *config.Config, registry *experiment.Registry) error {
	fmt.Printf("running %d x %s (seeds %d..%d)...\n", runs, cfg.Scene, cfg.Seed, cfg.Seed+int64(runs)-1)
	start := time.Now()

	results, err := experiment.RunEnsemble(ctx, cfg, registry, runs, parallel)
	if err != nil {
		return err
	}

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tCONTACTS\t"+strings.ToUpper(strings.Join(names, "\t")))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d", cfg.Seed+int64(i), r.Contacts)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6g", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range names {
		vals := make([]float64, len(results))
		for i, r := range results {
			vals[i] = r.Metrics[name]
		}
		s := analysis.Summarize(vals)
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\t%.6g\t%.6g\n", name, s.Mean, s.Std, s.Min, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tPRESET\tTIME\tSTEPS\tPARTICLES\tSPRINGS\tSOLVER")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Scene,
			p,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Particles,
			run.Springs,
			run.Solver,
		)
	}

	return w.Flush()
}

func loadSeries(runID string) (*storage.RunMetadata, map[string][]float64, map[string][]float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	records, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("no data for run %s", runID)
	}
	values, times := storage.SeriesByMetric(records)
	return meta, values, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, _, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	names := sortedKeys(series)
	if plotMetric != "" {
		if _, ok := series[plotMetric]; !ok {
			return fmt.Errorf("metric %q not recorded (have %v)", plotMetric, names)
		}
		names = []string{plotMetric}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(series[names[0]]))

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs sample"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	data := &storage.ExportData{
		ID:        meta.ID,
		Scene:     meta.Scene,
		Preset:    meta.Preset,
		Dt:        meta.Dt,
		Duration:  meta.Duration,
		Steps:     meta.Steps,
		Particles: meta.Particles,
		Metrics:   meta.Metrics,
	}
	return storage.ExportJSONStdout(data)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return storage.ExportJSON(outFile, data)
	}
	return storage.ExportJSONStdout(data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if framesOut {
		frames, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}
		return storage.ExportFramesCSV(os.Stdout, frames, frameStep)
	}

	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportSeriesCSV(os.Stdout, series)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, series, times, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	vals, ok := series[svgMetric]
	if !ok {
		return fmt.Errorf("metric %q not recorded (have %v)", svgMetric, sortedKeys(series))
	}

	points := make([]analysis.Point, len(vals))
	for i, v := range vals {
		points[i] = analysis.Point{X: times[svgMetric][i], Y: v}
	}
	svg := export.PlotToSVG(points, export.PlotOptions{Caption: svgMetric + " vs time"})
	if svg == "" {
		return fmt.Errorf("not enough samples to plot %s", svgMetric)
	}

	if outFile == "" {
		_, err = fmt.Println(svg)
		return err
	}
	return os.WriteFile(outFile, []byte(svg), 0644)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, times, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tSAMPLES\tMEAN\tSTD\tMIN\tMAX\tFINAL")
	for _, name := range sortedKeys(series) {
		s := analysis.Summarize(series[name])
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3g\t%.6g\t%.6g\t%.6g\n", name, s.Samples, s.Mean, s.Std, s.Min, s.Max, s.Final)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	vals, ok := series[analyzeMetric]
	if !ok {
		return nil
	}
	ts := times[analyzeMetric]
	fmt.Println()

	if t, ok := analysis.SettleTime(ts, vals, threshold); ok {
		fmt.Printf("%s settles below %g at t=%.1f\n", analyzeMetric, threshold, t)
	} else {
		fmt.Printf("%s does not settle below %g\n", analyzeMetric, threshold)
	}

	if len(ts) < 2 {
		return nil
	}
	interval := ts[1] - ts[0]
	_, power := analysis.PowerSpectrum(vals, interval)
	if len(power) > 2 {
		graph := asciigraph.Plot(power[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+analyzeMetric+")"),
		)
		fmt.Println()
		fmt.Println(graph)
		fmt.Println()
	}
	if period, ok := analysis.DominantPeriod(vals, interval); ok {
		fmt.Printf("dominant period: %.3f\n", period)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, series, _, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	xs, ok := series[xMetric]
	if !ok {
		return fmt.Errorf("metric %q not recorded (have %v)", xMetric, sortedKeys(series))
	}
	ys, ok := series[yMetric]
	if !ok {
		return fmt.Errorf("metric %q not recorded (have %v)", yMetric, sortedKeys(series))
	}

	fmt.Printf("phase plot: %s (%s)\n", meta.ID, meta.Scene)
	fmt.Printf("x: %s  y: %s\n\n", xMetric, yMetric)
	fmt.Print(analysis.PhasePlotASCII(xs, ys, 80, 24))
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	scene := args[0]
	registry := experiment.NewRegistry()

	const benchSteps = 200
	counts := []int{100, 400, 1600}
	workerCounts := []int{1}
	if n := runtime.NumCPU(); n > 1 {
		workerCounts = append(workerCounts, n)
	}

	fmt.Printf("benchmarking %s (%d steps)\n\n", scene, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC\tCONTACTS/STEP")

	for _, n := range counts {
		for _, wk := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Scene = scene
			cfg.Seed = 42
			cfg.Particles.Count = n
			cfg.World.Width = 10 * float64(n) / 20
			cfg.World.Height = cfg.World.Width
			cfg.Physics.Workers = wk

			world, err := experiment.BuildWorld(cfg, registry, rand.New(rand.NewSource(cfg.Seed)))
			if err != nil {
				return err
			}
			s := sim.New(world)

			start := time.Now()
			result, err := s.Run(context.Background(), sim.RunConfig{Steps: benchSteps, SampleEvery: benchSteps})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.1f\n",
				world.Len(), wk, result.Steps, elapsed,
				float64(result.Steps)/elapsed.Seconds(),
				float64(result.Contacts)/float64(result.Steps))
		}
	}

	return w.Flush()
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(sweepArgs) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(sweepArgs))
	ranges := make([][]float64, 0, len(sweepArgs))
	for _, arg := range sweepArgs {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("bad --param %q, want name=v1,v2", arg)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("bad value in --param %q: %w", arg, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, trials, err := gs.Search(ctx, cfg, experiment.NewRegistry(), sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, t := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		if t.Err != nil {
			fmt.Fprintf(w, "error: %v\n", t.Err)
		} else {
			fmt.Fprintf(w, "%.6g\n", t.Value)
		}
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(titleStyle.Render("best:"))
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Printf(" (%s=%.6g)\n", sweepMetric, best.Value)
	return nil
}

func watchScene(cmd *cobra.Command, args []string) error {
	scene := args[0]
	cfg, err := loadConfig(cmd, scene)
	if err != nil {
		return err
	}

	// the dashboard owns the terminal
	dynamo.SetLogger(nil)

	registry := experiment.NewRegistry()
	build := func() (*sim.Simulator, error) {
		world, err := experiment.BuildWorld(cfg, registry, rand.New(rand.NewSource(cfg.Seed)))
		if err != nil {
			return nil, err
		}
		s := sim.New(world)
		for _, m := range registry.DefaultMetrics(scene, cfg) {
			s.AddMetric(m)
		}
		return s, nil
	}

	limit := 0.0
	if cmd.Flags().Changed("time") {
		limit = cfg.Duration
	}
	return viz.Run(build, scene, limit)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
