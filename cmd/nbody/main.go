package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/config"
)

var (
	dataDir    string
	verbose    bool
	configFile string

	dt         float64
	tmax       float64
	outputs    int
	seed       int64
	integrator string
	progress   bool

	frameDt float64
	theme   string

	sweepBody     int
	aMin, aMax    float64
	eMin, eMax    float64
	gridN         int
	workers       int
	sweepSegments int

	trials       int
	perturbation float64
	noSave       bool

	outFile  string
	savePath string
	body     int

	envCfg config.Env
)

// main registers the commands and exits with status 1 on error. With no
// subcommand it opens the interactive problem picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "nbody",
		Short:         "gravitational n-body integrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger()
			e, err := config.ParseEnv()
			if err != nil {
				return err
			}
			envCfg = e
			if !cmd.Flags().Changed("data") && envCfg.DataDir != "" {
				dataDir = envCfg.DataDir
			}
			return nil
		},
		RunE: runMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data", "data directory (env NBODY_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "integrate a problem and store its snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().IntVar(&outputs, "outputs", 0, "number of snapshots (default from problem)")
	runCmd.Flags().BoolVar(&progress, "progress", false, "show a progress line on stderr")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a problem integrate in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	liveCmd.Flags().Float64Var(&frameDt, "frame-dt", 0, "simulated time per frame (default 10 steps)")
	liveCmd.Flags().StringVar(&theme, "theme", "night", "colour theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "MEGNO map over semi-major axis and eccentricity of one body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepBody, "body", 2, "index of the body to vary")
	sweepCmd.Flags().Float64Var(&aMin, "a-min", 7, "smallest semi-major axis")
	sweepCmd.Flags().Float64Var(&aMax, "a-max", 10, "largest semi-major axis")
	sweepCmd.Flags().Float64Var(&eMin, "e-min", 0, "smallest eccentricity")
	sweepCmd.Flags().Float64Var(&eMax, "e-max", 0.5, "largest eccentricity")
	sweepCmd.Flags().IntVar(&gridN, "n", 10, "grid points per axis")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent simulations (default GOMAXPROCS)")
	sweepCmd.Flags().IntVar(&sweepSegments, "segments", 10, "cancellation checkpoints per simulation")

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "run a problem with every integrator",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	addProblemFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "stability of randomly perturbed copies of a problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addProblemFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 32, "number of perturbed copies")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "relative size of the perturbation")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent simulations (default GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or write one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&savePath, "save", "", "write the named preset to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy drift and MEGNO of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period of one body from its x coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&body, "body", 1, "particle index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the orbits of a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, compareCmd, scenarioCmd,
		monteCarloCmd, presetsCmd,
		listCmd, plotCmd, analyzeCmd, exportCmd, svgCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "problem file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().Float64Var(&tmax, "tmax", 0, "end time")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for shadow particles")
	cmd.Flags().StringVarP(&integrator, "integrator", "i", "", "leapfrog, euler, whfast, rk4 or rk45")
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadProblem resolves the problem from --config or a preset name, then
// applies environment overrides and finally explicit flags.
func loadProblem(cmd *cobra.Command, args []string, fallback string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		name := fallback
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (try: nbody presets)", name)
		}
	}

	envCfg.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("tmax") {
		cfg.Run.TMax = tmax
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("outputs") {
		cfg.Run.Outputs = outputs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
