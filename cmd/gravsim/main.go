package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/store"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir       string
	verbose       bool
	configFile    string
	snapshotFile  string
	saveFinal     string
	dt            float64
	frames        int
	stepsPerFrame int
	method        string
	gravityG      float64
	scaleFactor   float64
	frameRate     int
	toStdout      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "2-D gravitational n-body simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", 1000, "frames to simulate")
	runCmd.Flags().StringVar(&saveFinal, "save-final", "", "write final state snapshot to path")
	runCmd.Flags().BoolVar(&toStdout, "json", false, "print full result as JSON instead of saving a run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body trajectories for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	energyCmd := &cobra.Command{
		Use:   "energy [run_id]",
		Short: "plot the energy series for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotEnergy,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "re-export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print a saved run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-14s %d bodies, G=%g, dt=%g, %s\n",
					name, len(cfg.Bodies), cfg.Physics.G, cfg.Physics.Dt, cfg.Physics.Method)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "config-init [path]",
		Short: "write the default scenario config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, energyCmd, exportJSONCmd, exportCSVCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario config file (yaml)")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "resume from a state snapshot (json)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 0, "integration sub-steps per frame")
	cmd.Flags().StringVar(&method, "method", "", "integration method (euler|verlet)")
	cmd.Flags().Float64Var(&gravityG, "g", 0, "gravitational constant override")
	cmd.Flags().Float64Var(&scaleFactor, "scale", 0, "display scale factor override")
}

// loadScenario resolves preset/config/snapshot plus flag overrides into
// a scenario name and config.
func loadScenario(cmd *cobra.Command, args []string) (string, *config.Config, float64, error) {
	name := "classic"
	if len(args) > 0 {
		name = args[0]
	}

	preset := config.GetPreset(name)
	if preset == nil {
		return "", nil, 0, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	// Copy so flag overrides never mutate the shared preset table.
	scenario := *preset
	cfg := &scenario

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return "", nil, 0, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		name = configFile
	}

	elapsed := 0.0
	if snapshotFile != "" {
		snap, err := store.LoadSnapshot(snapshotFile)
		if err != nil {
			return "", nil, 0, fmt.Errorf("loading snapshot: %w", err)
		}
		resumed := *cfg
		resumed.Bodies = snap.Bodies
		resumed.Physics = snap.Physics
		cfg = &resumed
		elapsed = snap.Elapsed
		name = snapshotFile
	}

	if cmd.Flags().Changed("dt") {
		cfg.Physics.Dt = dt
	}
	if cmd.Flags().Changed("steps-per-frame") {
		cfg.Physics.StepsPerFrame = stepsPerFrame
	}
	if cmd.Flags().Changed("method") {
		cfg.Physics.Method = method
	}
	if cmd.Flags().Changed("g") {
		cfg.Physics.G = gravityG
	}
	if cmd.Flags().Changed("scale") {
		cfg.Physics.ScaleFactor = scaleFactor
	}

	return name, cfg, elapsed, cfg.Validate()
}

func buildRunner(cfg *config.Config) (*sim.Runner, error) {
	engine := physics.NewEngine(cfg.Physics.G, cfg.Physics.ScaleFactor)
	runner, err := sim.NewRunner(engine, cfg.Bodies)
	if err != nil {
		return nil, err
	}
	runner.AddMetric(metrics.NewEnergyDrift(engine))
	runner.AddMetric(metrics.NewMomentumDrift())
	return runner, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, cfg, _, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	runCfg := sim.Config{
		Dt:            cfg.Physics.Dt,
		Frames:        frames,
		StepsPerFrame: cfg.Physics.StepsPerFrame,
		Method:        physics.ParseMethod(cfg.Physics.Method),
	}

	fmt.Printf("running %s (%d bodies, %s)...\n", name, len(cfg.Bodies), runCfg.Method)
	start := time.Now()

	result, err := runner.Run(context.Background(), runCfg)
	if err != nil {
		return err
	}
	wall := time.Since(start)

	if toStdout {
		return store.ExportJSON(os.Stdout, name, runCfg, result)
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, runCfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", wall)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (t=%.4f)\n", result.StepsTaken, runner.Engine().Elapsed())
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	for mName, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", mName, val)
	}
	if result.Fault != nil {
		fmt.Printf("stopped early: %v\n", result.Fault)
	}

	if saveFinal != "" {
		path, err := store.SaveSnapshot(saveFinal, runner.Bodies(), cfg.Physics, runner.Engine().Elapsed())
		if err != nil {
			return err
		}
		fmt.Printf("final state: %s\n", path)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, elapsed, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	if elapsed > 0 {
		logrus.Debugf("resuming at t=%.4f", elapsed)
	}
	return viz.Run(runner, name, cfg.Physics, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBODIES\tSTEPS\tMETHOD\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.StepsTaken,
			run.Method,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s (%s, %d bodies)\n\n", meta.ID, meta.Scenario, meta.Bodies)

	maxBodies := meta.Bodies
	if maxBodies > 3 {
		maxBodies = 3
	}
	for b := 0; b < maxBodies; b++ {
		for axis, label := range []string{"x", "y"} {
			data := make([]float64, len(states))
			for i := range states {
				data[i] = states[i][b*4+axis]
			}
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(8),
				asciigraph.Caption(fmt.Sprintf("body %d %s vs frame", b, label))))
			fmt.Println()
		}
	}
	return nil
}

func plotEnergy(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	_, _, energies, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	labels := []string{"kinetic", "potential", "total"}
	for k, label := range labels {
		data := make([]float64, len(energies))
		for i := range energies {
			data[i] = energies[i][k]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Caption(label+" energy vs frame")))
		fmt.Println()
	}
	return nil
}

func exportRunJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, states, energies, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		Times:      times,
		States:     states,
		Metrics:    meta.Metrics,
		StepsTaken: meta.StepsTaken,
	}
	for _, e := range energies {
		result.Kinetic = append(result.Kinetic, e[0])
		result.Potential = append(result.Potential, e[1])
		result.Total = append(result.Total, e[2])
	}
	result.EnergyDrift = meta.EnergyDrift

	runCfg := sim.Config{
		Dt:            meta.Dt,
		Frames:        meta.Frames,
		StepsPerFrame: meta.StepsPerFrame,
		Method:        physics.ParseMethod(meta.Method),
	}
	return store.ExportJSON(os.Stdout, meta.Scenario, runCfg, result)
}

func exportRunCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	times, states, energies, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{Times: times, States: states}
	for _, e := range energies {
		result.Kinetic = append(result.Kinetic, e[0])
		result.Potential = append(result.Potential, e[1])
		result.Total = append(result.Total, e[2])
	}
	return store.ExportCSV(os.Stdout, result)
}
