package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bounce/internal/analysis"
	"github.com/san-kum/bounce/internal/automation"
	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/experiment"
	"github.com/san-kum/bounce/internal/export"
	"github.com/san-kum/bounce/internal/gui"
	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/network"
	"github.com/san-kum/bounce/internal/optim"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
	"github.com/san-kum/bounce/internal/storage"
	"github.com/san-kum/bounce/internal/viz"
)

var (
	dataDir string
	envFile string
	verbose bool
	logger  *slog.Logger

	// config selection and overrides
	configFile  string
	preset      string
	overrides   []string
	seed        int64
	ticks       int
	tickMs      int
	numBodies   int
	gravity     float64
	restitution float64
	law         string
	walls       string
	damping     string
	script      string

	runName string
	addr    string
	sound   bool

	// analysis
	bodyID  int
	xAxis   string
	yAxis   string
	svgOut  string
	tick    int
	width   int
	braille bool
	epsilon float64

	// sweeps
	param    string
	paramMin float64
	paramMax float64
	steps    int
	runs     int
	metric   string
	maximize bool
	grid     []string
	trials   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bounce",
		Short: "circle collision sandbox",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			return config.LoadEnv(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bounce", "data directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with BOUNCE_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation headless and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset or \"bounce\")")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run in the terminal with keyboard control",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "pick and tweak a preset in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)
	guiCmd.Flags().BoolVar(&sound, "sound", false, "ping on contacts through the default audio output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to websocket clients and accept their input",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addConfigFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and a body's height",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyID, "body", 0, "body id")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [path]",
		Short: "export run frames to CSV (path - for stdout)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(args[0], outPath(args, args[0]+".csv"))
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [path]",
		Short: "export a run to JSON (path - for stdout)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(args[0], outPath(args, args[0]+".json"))
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce, frequency and phase analysis of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyID, "body", 0, "body id")
	analyzeCmd.Flags().StringVar(&xAxis, "x-axis", "y", "phase x axis (x, y, vx, vy)")
	analyzeCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "phase y axis (x, y, vx, vy)")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "also write the phase portrait as SVG")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "draw one stored frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&tick, "tick", -1, "tick to draw (default: last)")
	snapshotCmd.Flags().IntVar(&width, "width", 800, "image width in pixels")
	snapshotCmd.Flags().StringVarP(&svgOut, "out", "o", "-", "output path (- for stdout)")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "draw the frame as the terminal view sees it")

	divergenceCmd := &cobra.Command{
		Use:   "divergence",
		Short: "estimate how fast nearby arenas drift apart",
		Args:  cobra.NoArgs,
		RunE:  divergence,
	}
	addConfigFlags(divergenceCmd)
	divergenceCmd.Flags().Float64Var(&epsilon, "epsilon", 1e-6, "initial x offset of the first body")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one config value and average every metric",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&param, "param", "restitution", "config key to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 6, "number of values")
	sweepCmd.Flags().IntVar(&runs, "runs", 4, "seeds per value")
	sweepCmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to chart")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search config values for the best metric",
		Args:  cobra.NoArgs,
		RunE:  optimize,
	}
	addConfigFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&grid, "grid", nil, "key=min:max:n, repeatable")
	optimizeCmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to optimize")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")
	optimizeCmd.Flags().IntVar(&runs, "runs", 2, "seeds per point")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run many random arenas and count the unstable ones",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved config as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addConfigFlags(configCmd)

	rootCmd.AddCommand(runCmd, liveCmd, menuCmd, guiCmd, serveCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, analyzeCmd, snapshotCmd, divergenceCmd,
		sweepCmd, optimizeCmd, monteCarloCmd, scenarioCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset as group/name")
	f.StringArrayVar(&overrides, "set", nil, "key=value override, repeatable")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to run")
	f.IntVar(&tickMs, "tick-ms", config.DefaultTickMs, "tick period in milliseconds")
	f.IntVar(&numBodies, "bodies", config.DefaultBodies, "random body count")
	f.Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration")
	f.Float64Var(&restitution, "restitution", config.DefaultRestitution, "wall restitution")
	f.StringVar(&law, "law", "elastic", "collision law (elastic, merge)")
	f.StringVar(&walls, "walls", "rebound", "wall model (rebound, impulse)")
	f.StringVar(&damping, "damping", "drag", "damping model (drag, friction, none)")
	f.StringVar(&script, "script", "", "input script (yaml)")
}

// resolveConfig layers preset or file, then BOUNCE_* variables, then changed
// flags, then --set overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		group, name, _ := strings.Cut(preset, "/")
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (try `bounce presets`)", preset)
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("tick-ms") {
		cfg.TickMs = tickMs
	}
	if flags.Changed("bodies") {
		cfg.Population.Count = numBodies
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("restitution") {
		cfg.Physics.Restitution = restitution
	}
	if flags.Changed("law") {
		cfg.Law = law
	}
	if flags.Changed("walls") {
		cfg.Physics.Walls = walls
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("script") {
		cfg.Input.Script = script
	}

	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		if err := cfg.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func title() string {
	if preset != "" {
		return preset
	}
	return "bounce"
}

func outPath(args []string, def string) string {
	if len(args) > 1 {
		return args[1]
	}
	return def
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(metrics.Default()); err != nil {
		return err
	}
	exp.Simulator().SetLogger(logger)

	logger.Info("running simulation", "bodies", len(exp.Simulator().Bodies()), "ticks", cfg.Ticks, "seed", cfg.Seed)
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	name := runName
	if name == "" {
		name = strings.ReplaceAll(title(), "/", "-")
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("collisions: %d\n", result.Collisions)
	fmt.Printf("energy drift: %.4f\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(experiment.Factory(cfg, metrics.Default), cfg.Seed, title())
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, src, err := experiment.Factory(cfg, metrics.Default)(cfg.Seed)
	if err != nil {
		return err
	}
	s.SetLogger(logger)

	err = gui.Run(cmd.Context(), s, src, title(), sound)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, src, err := experiment.Factory(cfg, nil)(cfg.Seed)
	if err != nil {
		return err
	}
	s.SetLogger(logger)

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	hub := network.NewHub(s.Params(), logger)
	served := make(chan error, 1)
	go func() {
		served <- hub.ListenAndServe(ctx, addr)
		stop()
	}()

	runErr := s.Run(ctx, input.Merge(src, hub.Source()), hub)
	stop()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(runErr, <-served)
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
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tTICKS\tLAW\tWALLS\tCOLLISIONS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Ticks,
			run.Law,
			run.Walls,
			run.Collisions,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(energy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d  ticks: %d  law: %s\n\n", meta.Bodies, meta.Ticks, meta.Law)
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))

	track, err := st.Track(runID, bodyID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(analysis.Series(track, "y"),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("body %d height", bodyID)),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	track, err := st.Track(runID, bodyID)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s, body %d\n\n", meta.ID, bodyID)

	impacts := analysis.Impacts(track)
	fmt.Printf("impacts: %d\n", len(impacts))
	for i, ev := range impacts {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(impacts)-i)
			break
		}
		fmt.Printf("  tick %5d  y %8.2f  vy %7.2f -> %7.2f\n", ev.Tick, ev.Height, ev.Before, ev.After)
	}
	if len(impacts) > 0 {
		fmt.Printf("mean restitution: %.3f\n", analysis.Restitution(track))
	}

	apexes := analysis.Apexes(track)
	if len(apexes) > 0 {
		heights := make([]float64, len(apexes))
		for i, ev := range apexes {
			heights[i] = ev.Height
		}
		fmt.Printf("apexes: %d, first %.2f, last %.2f\n", len(apexes), heights[0], heights[len(heights)-1])
	}

	dt := float64(meta.TickMs) / 1000
	if dt > 0 {
		freq := analysis.DominantFrequency(analysis.Series(track, "y"), dt)
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1.0/freq)
		}
	}

	portrait := analysis.GeneratePhasePortrait(track, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("unknown axis %q or %q", xAxis, yAxis)
	}
	fmt.Printf("\nphase portrait (%s vs %s):\n", portrait.YLabel, portrait.XLabel)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))

	if svgOut != "" {
		svg := export.PhaseToSVG(portrait, 600, 400, "#00ffff")
		if err := export.WriteFile(svgOut, svg); err != nil {
			return err
		}
		logger.Info("wrote phase portrait", "path", svgOut)
	}
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", runID)
	}
	p, err := meta.Config.Params()
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return storage.ErrNoFrames
	}

	frame := frames[len(frames)-1]
	if tick >= 0 {
		i := sort.Search(len(frames), func(i int) bool { return frames[i].Tick >= tick })
		if i == len(frames) || frames[i].Tick != tick {
			return fmt.Errorf("run %s has no tick %d", runID, tick)
		}
		frame = frames[i]
	}
	if braille {
		cols := max(width/10, 4)
		canvas := viz.NewCanvas(cols, int(float64(cols)*p.Height/p.Width/2))
		canvas.DrawFrame(frame, p, input.All)
		return export.WriteFile(svgOut, export.CanvasToSVG(canvas, float64(width)/float64(cols*2)))
	}
	return export.WriteFile(svgOut, export.FrameToSVG(frame, p, width))
}

func divergence(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	factory := experiment.Factory(cfg, nil)
	build := func(offset float64) (*sim.Simulator, error) {
		s, _, err := factory(cfg.Seed)
		if err != nil {
			return nil, err
		}
		if bodies := s.Bodies(); len(bodies) > 0 && offset != 0 {
			bodies[0].Position = bodies[0].Position.Add(physics.Vec(offset, 0))
		}
		return s, nil
	}

	start := time.Now()
	lambda, err := analysis.Divergence(build, epsilon, cfg.Ticks)
	if err != nil {
		return err
	}
	fmt.Printf("divergence rate: %.4f /s over %d ticks (%v)\n", lambda, cfg.Ticks, time.Since(start).Round(time.Millisecond))
	if lambda > 0.01 {
		fmt.Println("nearby arenas drift apart: the run is chaotic")
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := metrics.New(metric); err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: param,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
		Runs:      runs,
	}, logger)
	if err != nil {
		return err
	}

	names := metrics.List()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tcollisions\t%s\n", param, strings.Join(names, "\t"))
	values := make([]float64, len(results))
	for i, r := range results {
		row := make([]string, len(names))
		for j, n := range names {
			row[j] = strconv.FormatFloat(r.Metrics[n], 'f', 4, 64)
		}
		fmt.Fprintf(w, "%g\t%.1f\t%s\n", r.ParamValue, r.Collisions, strings.Join(row, "\t"))
		values[i] = r.Metrics[metric]
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Caption(fmt.Sprintf("%s vs %s", metric, param)),
	))
	return nil
}

// parseGrid reads key=min:max:n.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		key, rest, ok := strings.Cut(spec, "=")
		parts := strings.Split(rest, ":")
		if !ok || len(parts) != 3 {
			return nil, nil, fmt.Errorf("--grid %q: want key=min:max:n", spec)
		}
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return nil, nil, fmt.Errorf("--grid %q: %w", spec, err)
		}
		names = append(names, key)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	return names, ranges, nil
}

func optimize(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid key=min:max:n is required")
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}

	best, points, err := optim.NewGridSearch(names, ranges, runs).Search(cmd.Context(), cfg, metric, maximize)
	for _, pt := range points {
		if pt.Err != nil {
			logger.Warn("point skipped", "params", pt.Params, "err", pt.Err)
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points\n", len(points))
	fmt.Printf("best %s: %.6f\n", metric, best.Value)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best.Params[n])
	}
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		Seed:      cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	collisions := make([]float64, len(results))
	for i, r := range results {
		collisions[i] = float64(r.Collisions)
		if !r.Stable {
			fmt.Printf("seed %d: unstable (drift %.4f)\n", r.Seed, r.EnergyDrift)
		}
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("stable: %d  unstable: %d\n\n", stable, unstable)
	fmt.Println(asciigraph.Plot(collisions,
		asciigraph.Height(8),
		asciigraph.Caption("collisions per seed"),
	))
	return nil
}

func runScenario(cmd *cobra.Command, path string) error {
	scenario, err := automation.LoadScenario(path)
	if err != nil {
		return err
	}
	logger.Info("scenario", "name", scenario.Name, "steps", len(scenario.Steps))

	results, err := automation.RunScenario(cmd.Context(), scenario, storage.New(dataDir), logger)
	for i, r := range results {
		line := fmt.Sprintf("step %d: %d ticks, %d collisions, drift %.4f", i+1, r.Result.Ticks, r.Result.Collisions, r.Result.EnergyDrift)
		if r.RunID != "" {
			line += ", saved as " + r.RunID
		}
		fmt.Println(line)
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}
	for _, g := range groups {
		presets := config.ListPresets(g)
		if len(presets) == 0 {
			fmt.Printf("no presets for group: %s\n", g)
			continue
		}
		fmt.Printf("%s:\n", g)
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", g, p)
		}
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := "bounce.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
