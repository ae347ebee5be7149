package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/swesim/internal/analysis"
	"github.com/san-kum/swesim/internal/automation"
	"github.com/san-kum/swesim/internal/benchmarks"
	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/export"
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/integrators"
	"github.com/san-kum/swesim/internal/metrics"
	"github.com/san-kum/swesim/internal/sim"
	"github.com/san-kum/swesim/internal/storage"
	"github.com/san-kum/swesim/internal/viz"
)

// stabilityBound flags states far outside any physical surface height.
const stabilityBound = 1e6

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	return runConfig(cmd.Context(), cfg)
}

func runConfig(ctx context.Context, cfg *config.Config) error {
	if cfg.Precision == config.Float32 {
		return runWith[float32](ctx, cfg)
	}
	return runWith[float64](ctx, cfg)
}

func runWith[T grid.Float](ctx context.Context, cfg *config.Config) error {
	s, err := sim.New[T](cfg)
	if err != nil {
		return err
	}

	dir, err := cfg.DataPath()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	if err := st.Init(); err != nil {
		return err
	}

	w, err := storage.NewWriter[T](st, cfg)
	if err != nil {
		return err
	}
	catalog, err := storage.OpenCatalog(st.CatalogPath())
	if err != nil {
		return err
	}
	defer catalog.Close()
	if err := catalog.PutRun(ctx, storage.RunRecordFrom(w.Metadata(), w.Dir())); err != nil {
		return err
	}

	s.AddObserver(w)
	s.AddObserver(storage.NewRecorder[T](ctx, catalog, w.ID()))
	if !quiet {
		s.AddObserver(sim.ObserverFunc[T](func(snap sim.Snapshot[T]) error {
			log.Printf("step %d at simulation time %g", snap.Step, float64(snap.Time))
			return nil
		}))
		diag := metrics.NewDiagnostics[T](os.Stdout)
		diag.Format = viz.RangeLine
		s.AddObserver(diag)
	}
	s.AddMetric(metrics.NewMassDrift(s.Model()))
	s.AddMetric(metrics.NewEnergyDrift(s.Model()))
	s.AddMetric(metrics.NewStability[T](stabilityBound))

	log.Printf("running %s with %s: %d steps of dt=%g, output every %d",
		cfg.Benchmark, integrators.Canonical(cfg.Integrator), s.NumTimesteps(), float64(s.Dt()), s.OutputEveryNth())
	start := time.Now()

	result, runErr := s.Run(ctx)
	if err := w.Finish(result, runErr); err != nil {
		log.Printf("failed to save metadata: %v", err)
	}
	if err := catalog.PutRun(context.WithoutCancel(ctx), storage.RunRecordFrom(w.Metadata(), w.Dir())); err != nil {
		log.Printf("failed to update catalog: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("run %s: %w", w.ID(), runErr)
	}

	fmt.Println()
	fmt.Println(viz.Title.Render("completed in " + time.Since(start).Round(time.Millisecond).String()))
	fmt.Println(viz.Metric("run id", w.ID()))
	fmt.Println(viz.Metric("steps", fmt.Sprintf("%d", result.Steps)))
	fmt.Println(viz.Metric("snapshots", fmt.Sprintf("%d", result.Snapshots)))
	fmt.Println(viz.Metric("directory", w.Dir()))
	fmt.Println()
	for _, name := range []string{"mass_drift", "energy_drift", "stability"} {
		fmt.Println(viz.Metric(name, fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Precision == config.Float32 {
		return liveWith[float32](cfg)
	}
	return liveWith[float64](cfg)
}

func liveWith[T grid.Float](cfg *config.Config) error {
	s, err := sim.New[T](cfg)
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(s, stepsPerFrame)
	if frameRate > 0 {
		m = m.WithFrameRate(time.Second / time.Duration(frameRate))
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir, err := dataDir(cmd)
	if err != nil {
		return err
	}
	catalog, err := storage.OpenCatalog(storage.New(dir).CatalogPath())
	if err != nil {
		return err
	}
	defer catalog.Close()

	runs, err := catalog.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBENCHMARK\tINTEG\tPREC\tDOFS\tDT\tSTEPS\tSTATUS\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4g\t%d\t%s\t%s\n",
			run.ID,
			run.Benchmark,
			run.Integrator,
			run.Precision,
			run.NumDofs,
			run.Dt,
			run.Steps,
			run.Status,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	dir, err := dataDir(cmd)
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if len(meta.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	t := meta.Times[len(meta.Times)-1]
	if plotTime >= 0 {
		t = nearest(meta.Times, plotTime)
	}

	xs, values, err := st.LoadSnapshot(runID, plotField, t)
	if err != nil {
		return err
	}

	if plotSVG != "" {
		return writeSVG(plotSVG, xs, values, t)
	}

	fmt.Println(viz.Metric("run", meta.ID))
	fmt.Println(viz.Metric("benchmark", meta.Config.Benchmark))
	fmt.Println(viz.Metric("time", fmt.Sprintf("%g", t)))
	fmt.Println()

	if plotSpectrum {
		f := grid.New(grid.NewDisc(meta.Config.DomainSize, len(values)))
		copy(f.Data(), values)
		amp := analysis.Spectrum(f)
		caption := fmt.Sprintf("|%s_k| (dominant k = %d)", plotField, analysis.Dominant(amp))
		fmt.Println(viz.Profile(amp, plotHeight, plotWidth, caption))
		return nil
	}

	caption := fmt.Sprintf("%s(x) at t = %g", plotField, t)
	fmt.Println(viz.Profile(values, plotHeight, plotWidth, caption))
	return nil
}

func writeSVG(path string, xs, values []float64, t float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	series := export.Series{
		Name:  fmt.Sprintf("%s(x) at t = %g", plotField, t),
		Color: string(viz.CurrentTheme.Primary),
		X:     xs,
		Y:     values,
	}
	if err := export.WriteProfile(f, plotWidth*10, plotHeight*20, series); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return f.Close()
}

func nearest(times []float64, t float64) float64 {
	best := times[0]
	for _, c := range times {
		if math.Abs(c-t) < math.Abs(best-t) {
			best = c
		}
	}
	return best
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	dir, err := dataDir(cmd)
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	if !showSnapshots {
		return nil
	}

	catalog, err := storage.OpenCatalog(st.CatalogPath())
	if err != nil {
		return err
	}
	defer catalog.Close()

	snaps, err := catalog.Snapshots(cmd.Context(), runID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTIME\tFIELD\tMIN\tMAX")
	for _, s := range snaps {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%.6g\t%.6g\n", s.Step, s.Time, s.Field, s.Min, s.Max)
	}
	return w.Flush()
}

func runConvergence(cmd *cobra.Command, args []string) error {
	if preset == "" {
		preset = "convergence"
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log.Printf("convergence study: %s, %d dofs, T=%g, dts %v", cfg.Benchmark, cfg.NumDofs, cfg.SimTime, convDts)
	report, err := analysis.Convergence(cmd.Context(), analysis.Study{
		Config:      *cfg,
		Dts:         convDts,
		Integrators: convIntegrators,
		Refine:      convRefine,
	})
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("reference", fmt.Sprintf("rk4, dt=%g", report.ReferenceDt)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tDT\tERROR\tORDER")
	for _, row := range report.Rows {
		order := "-"
		if !math.IsNaN(row.Order) {
			order = fmt.Sprintf("%.3f", row.Order)
		}
		fmt.Fprintf(w, "%s\t%g\t%.3e\t%s\n", row.Integrator, row.Dt, row.Error, order)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, name := range convIntegrators {
		fmt.Println(viz.Metric(name, fmt.Sprintf("observed %.3f, formal %d", report.Observed(name), integrators.Order(name))))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log.Printf("scenario %s: %d steps", sc.Name, len(sc.Steps))
	return automation.RunScenario(cmd.Context(), sc, base, func(ctx context.Context, name string, cfg *config.Config) error {
		fmt.Println(viz.Title.Render(name))
		return runConfig(ctx, cfg)
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Config:    *cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Progress: func(i, n int, v float64) {
			log.Printf("sweep %d/%d: %s=%.4g", i, n, sweepParam, v)
		},
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tMASS DRIFT\tENERGY DRIFT\tSTABLE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%.3e\t%.3e\t%t\n", r.ParamValue, r.Steps, r.MassDrift, r.EnergyDrift, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.SweepStats(results)
	fmt.Println()
	fmt.Println(viz.Metric("stable", fmt.Sprintf("%d", stable)))
	fmt.Println(viz.Metric("unstable", fmt.Sprintf("%d", unstable)))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBENCHMARK\tINTEG\tDOFS\tDOMAIN\tSIM TIME")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\n", name, p.Benchmark, p.Integrator, p.NumDofs, p.DomainSize, p.SimTime)
	}
	return w.Flush()
}

func listBenchmarks(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range benchmarks.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, benchmarks.Describe(name))
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
