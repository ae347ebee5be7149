package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/swesim/internal/automation"
	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/integrators"
)

var (
	// Config file
	configFile string
	// Preset name
	preset string
	// CPU profile output directory
	cpuProfile string
	// Frames per second and steps per frame for live view
	frameRate     int
	stepsPerFrame int
	quiet         bool
	// plot
	plotField    string
	plotTime     float64
	plotHeight   int
	plotWidth    int
	plotSpectrum bool
	plotSVG      string
	// show
	showSnapshots bool
	// convergence
	convDts         []float64
	convIntegrators []string
	convRefine      int
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	log.SetFlags(log.Ltime)
	log.SetPrefix("swesim: ")

	rootCmd := &cobra.Command{
		Use:           "swesim",
		Short:         "1D linearized shallow water simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml, default ~/.swesim/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration as the base layer")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store snapshots",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	config.AddFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this directory")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print diagnostics at output times")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	config.AddFlags(liveCmd.Flags())
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 1, "time steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().String("data-dir", config.DefaultDataDir, "directory for run output and the catalog")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored field snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().String("data-dir", config.DefaultDataDir, "directory for run output and the catalog")
	plotCmd.Flags().StringVar(&plotField, "field", "h", "field to plot (h|v|b)")
	plotCmd.Flags().Float64Var(&plotTime, "time", -1, "snapshot time, negative for the last one")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "write the profile to this SVG file instead")
	plotCmd.Flags().BoolVar(&plotSpectrum, "spectrum", false, "plot the amplitude spectrum instead")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().String("data-dir", config.DefaultDataDir, "directory for run output and the catalog")
	showCmd.Flags().BoolVar(&showSnapshots, "snapshots", false, "also print recorded field ranges")

	convergenceCmd := &cobra.Command{
		Use:   "convergence",
		Short: "measure the temporal order of the integrators",
		Args:  cobra.NoArgs,
		RunE:  runConvergence,
	}
	// dt and integrator are set per run by --dts and --integrators
	config.AddFlags(convergenceCmd.Flags(), "dt", "integrator")
	convergenceCmd.Flags().Float64SliceVar(&convDts, "dts", []float64{0.01, 0.005, 0.0025}, "time step sizes")
	convergenceCmd.Flags().StringSliceVar(&convIntegrators, "integrators", integrators.Names(), "integrators to compare")
	convergenceCmd.Flags().IntVar(&convRefine, "refine", 16, "reference dt is the smallest dt divided by this")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	config.AddFlags(scenarioCmd.Flags())
	scenarioCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print diagnostics at output times")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter sweep and report drift and stability",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	config.AddFlags(sweepCmd.Flags())
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", fmt.Sprintf("parameter to vary %v", automation.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 30, "last parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "n", 10, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchmarksCmd := &cobra.Command{
		Use:   "benchmarks",
		Short: "list available initial conditions",
		Args:  cobra.NoArgs,
		RunE:  listBenchmarks,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default (or --preset) configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, showCmd, convergenceCmd, scenarioCmd, sweepCmd, presetsCmd, benchmarksCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// resolveConfig layers preset or defaults < config file < environment < flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if err := config.Bind(v, cmd.Flags()); err != nil {
		return nil, err
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		config.UsePreset(v, p)
	}
	if err := config.ReadInConfig(v, configFile); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config.FromViper(v)
}

// dataDir resolves --data-dir for commands that only read runs.
func dataDir(cmd *cobra.Command) (string, error) {
	v := viper.New()
	if err := config.Bind(v, cmd.Flags()); err != nil {
		return "", err
	}
	if err := config.ReadInConfig(v, configFile); err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.DefaultConfig()
	cfg.DataDir = v.GetString("data_dir")
	return cfg.DataPath()
}
