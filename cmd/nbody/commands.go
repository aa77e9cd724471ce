package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbody/internal/analysis"
	"github.com/san-kum/nbody/internal/automation"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/experiment"
	"github.com/san-kum/nbody/internal/export"
	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/storage"
	"github.com/san-kum/nbody/internal/sweep"
	"github.com/san-kum/nbody/internal/tui"
	"github.com/san-kum/nbody/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, args, "kepler")
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(nil, sim.WithLogger(slog.Default())); err != nil {
		return err
	}
	s := exp.Simulation()

	var bar *tui.Progress
	if progress {
		bar = tui.NewProgress(os.Stderr, 10)
		s.AddObserver(bar)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d bodies, %s, dt=%g, tmax=%g\n",
		cfg.Name, s.N(), s.Integrator(), s.Dt(), cfg.Run.TMax)

	res, runErr := exp.Run(ctx)
	if bar != nil {
		bar.Done(s)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	runID, err := st.Save(exp.Metadata(res), res.Snapshots)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("status: %s\n", res.Status)
	switch res.Status {
	case sim.StatusEscape:
		fmt.Printf("  particle %d left r=%g\n", s.Escape(), cfg.Run.MaxRadius)
	case sim.StatusCloseEncounter:
		i, j := s.CloseEncounter()
		fmt.Printf("  particles %d and %d closer than %g\n", i, j, cfg.Run.MinDistance)
	}
	fmt.Printf("t: %.10g\n", s.Time())
	fmt.Printf("snapshots: %d\n", len(res.Snapshots))
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, res.Metrics)

	if runErr != nil {
		return fmt.Errorf("interrupted at t=%g: %w", s.Time(), runErr)
	}
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %.6g\n", name+":", m[name])
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func liveEntry(cfg *config.Config) viz.Entry {
	return viz.Entry{
		Name:        cfg.Name,
		Description: cfg.Description,
		Build: func() (*sim.Simulation, error) {
			return cfg.Build(sim.WithLogger(quietLogger()))
		},
		Options: viz.LiveOptions{
			FrameDt: frameDt,
			TMax:    cfg.Run.TMax,
			Options: cfg.Run.Options(),
			Theme:   theme,
		},
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		return runMenu(cmd, args)
	}
	cfg, err := loadProblem(cmd, args, "kepler")
	if err != nil {
		return err
	}
	e := liveEntry(cfg)
	return viz.Run(e.Name, e.Build, e.Options)
}

func runMenu(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	entries := make([]viz.Entry, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		envCfg.Apply(cfg)
		entries = append(entries, liveEntry(cfg))
	}
	return viz.RunMenu(entries)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, args, "jupiter-saturn")
	if err != nil {
		return err
	}
	if cfg.MegnoDelta == 0 {
		cfg.MegnoDelta = 1e-6
	}
	if gridN < 1 {
		return fmt.Errorf("grid size must be positive, got %d", gridN)
	}

	build, err := sweep.OrbitBuilder(cfg, sweepBody, sim.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	grid := sweep.NewGrid(
		sweep.Param{Name: "a", Values: sweep.Linspace(aMin, aMax, gridN)},
		sweep.Param{Name: "e", Values: sweep.Linspace(eMin, eMax, gridN)},
		build,
	)
	grid.Workers = workers
	grid.Segments = sweepSegments

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s body %d: %dx%d grid to t=%g\n", cfg.Name, sweepBody, gridN, gridN, cfg.Run.TMax)
	start := time.Now()
	res, err := grid.Run(ctx, cfg.Run.TMax, cfg.Run.Options())
	if err != nil {
		return err
	}
	fmt.Printf("finished in %v\n\n", time.Since(start).Round(time.Millisecond))

	printMegnoMap(os.Stdout, res)

	if best, ok := res.Best(func(c sweep.Cell) float64 {
		if c.Status != sim.StatusOK {
			return math.NaN()
		}
		return math.Abs(c.Megno - 2)
	}); ok {
		fmt.Printf("\nmost regular: a=%.4g e=%.4g megno=%.4f lyapunov=%.3e\n", best.X, best.Y, best.Megno, best.Lyapunov)
	}
	return nil
}

// printMegnoMap draws e upwards and a to the right. '.' is regular
// (MEGNO near 2), '+' mildly chaotic, '#' chaotic, 'x' stopped early.
func printMegnoMap(w io.Writer, res *sweep.Result) {
	for iy := len(res.Cells) - 1; iy >= 0; iy-- {
		row := res.Cells[iy]
		fmt.Fprintf(w, "e=%-7.3f ", res.Y.Values[iy])
		for _, c := range row {
			switch {
			case c.Status != sim.StatusOK:
				fmt.Fprint(w, "x ")
			case c.Megno < 2.5:
				fmt.Fprint(w, ". ")
			case c.Megno < 4:
				fmt.Fprint(w, "+ ")
			default:
				fmt.Fprint(w, "# ")
			}
		}
		fmt.Fprintln(w)
	}
	if len(res.X.Values) > 0 {
		fmt.Fprintf(w, "%10sa=%.4g .. %.4g\n", "", res.X.Values[0], res.X.Values[len(res.X.Values)-1])
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, args, "binary")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTATUS\tT\tDT\tENERGY DRIFT\tELAPSED")

	for _, name := range integrators.Names() {
		c := cfg.Clone()
		c.Integrator = name
		c.Run.Outputs = 1

		exp := experiment.New(c)
		if err := exp.Setup(nil, sim.WithLogger(slog.Default())); err != nil {
			return err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s := exp.Simulation()
		fmt.Fprintf(w, "%s\t%s\t%.6g\t%.3g\t%.3e\t%v\n",
			name, res.Status, s.Time(), s.Dt(), res.Metrics["energy_drift"], res.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := sc.Run(ctx, st, slog.Default())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSTATUS\tSNAPSHOTS\tENERGY DRIFT\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3e\t%v\n",
			r.Step, r.RunID, r.Status, len(r.Snapshots), r.Metrics["energy_drift"], r.Elapsed.Round(time.Millisecond))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, args, "jupiter-saturn")
	if err != nil {
		return err
	}

	mc := &automation.MonteCarlo{
		Config:       cfg,
		Perturbation: perturbation,
		Trials:       trials,
		Seed:         cfg.Seed,
		Workers:      workers,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("monte carlo %s: %d trials, perturbation %g, tmax %g\n", cfg.Name, trials, perturbation, cfg.Run.TMax)
	start := time.Now()
	results, err := mc.Run(ctx)
	if err != nil {
		return err
	}

	byStatus := make(map[sim.Status]int)
	megno := make([]float64, 0, len(results))
	for _, r := range results {
		byStatus[r.Status]++
		if r.Status == sim.StatusOK && r.Megno != 0 {
			megno = append(megno, r.Megno)
		}
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("finished in %v\n\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("stable:   %d\n", stable)
	fmt.Printf("unstable: %d (escape %d, close encounter %d)\n",
		unstable, byStatus[sim.StatusEscape], byStatus[sim.StatusCloseEncounter])
	if len(megno) > 0 {
		sort.Float64s(megno)
		fmt.Printf("megno:    min %.3f  median %.3f  max %.3f\n", megno[0], megno[len(megno)/2], megno[len(megno)-1])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		if savePath != "" {
			if err := config.Save(savePath, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", savePath)
			return nil
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTEGRATOR\tBODIES\tTMAX\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%s\n", name, cfg.Integrator, len(cfg.Bodies), cfg.Run.TMax, cfg.Description)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tINTEG\tN\tTMAX\tSTATUS\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4g\t%s\t%.2fs\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.N,
			run.TMax,
			run.Status,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, snaps, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(snaps) < 2 {
		return fmt.Errorf("run %s has no data to plot", meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s (%s)\n", meta.Problem, meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(snaps))

	e0 := snaps[0].Energy
	drift := make([]float64, len(snaps))
	megno := make([]float64, len(snaps))
	hasMegno := false
	for i, s := range snaps {
		drift[i] = s.Energy - e0
		if e0 != 0 {
			drift[i] /= math.Abs(e0)
		}
		megno[i] = s.Megno
		hasMegno = hasMegno || s.Megno != 0
	}

	fmt.Println(asciigraph.Plot(drift,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("relative energy error vs output"),
	))
	fmt.Println()

	if hasMegno {
		fmt.Println(asciigraph.Plot(megno,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("MEGNO vs output"),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(snaps) < 4 {
		return fmt.Errorf("run %s has too few samples", meta.ID)
	}

	track := storage.Track(snaps, body)
	if len(track) != len(snaps) {
		return fmt.Errorf("run %s has no particle %d", meta.ID, body)
	}
	xs := make([]float64, len(track))
	for i, p := range track {
		xs[i] = p.X
	}
	spacing := snaps[1].Time - snaps[0].Time

	freqs, power := analysis.Spectrum(xs, spacing)
	fmt.Printf("spectrum of x%d: %s\n\n", body, meta.ID)
	if len(power) > 1 {
		fmt.Println(asciigraph.Plot(power[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("amplitude, %.3g to %.3g cycles per unit time", freqs[1], freqs[len(freqs)-1])),
		))
		fmt.Println()
	}

	if period := analysis.DominantPeriod(xs, spacing); period > 0 {
		fmt.Printf("dominant period: %.6g\n", period)
	} else {
		fmt.Println("no periodic signal")
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.ExportJSON(w, *meta, snaps)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.OrbitsSVG(f, snaps, export.DefaultSVGOptions()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d particles, %d samples)\n", path, meta.N, len(snaps))
	return nil
}
