package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mdlab-go/mdsim/internal/analysis"
	"github.com/mdlab-go/mdsim/internal/boundary"
	"github.com/mdlab-go/mdsim/internal/config"
	"github.com/mdlab-go/mdsim/internal/forces"
	"github.com/mdlab-go/mdsim/internal/initial"
	"github.com/mdlab-go/mdsim/internal/md"
	"github.com/mdlab-go/mdsim/internal/metrics"
	"github.com/mdlab-go/mdsim/internal/sim"
	"github.com/mdlab-go/mdsim/internal/storage"
	"github.com/mdlab-go/mdsim/internal/viz"
)

const version = "1.0"

var (
	dataDir    string
	particles  int
	steps      int
	dt         float64
	epsilon    float64
	sigma      float64
	mass       float64
	velStdDev  float64
	seed       int64
	bndMode    string
	workers    int
	snapshots  bool
	configFile string
	preset     string
	// Plot selection
	particleIdx int
	// Live view pacing
	frameRate     int
	stepsPerFrame int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdsim",
		Short: "molecular dynamics simulation of Lennard-Jones particles",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&snapshots, "snapshots", false, "write per-step position snapshots")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot particle trajectories from stored snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle index to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 200, "integration steps per rendered frame")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "mean squared displacement from stored snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			banner()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, analyzeCmd, presetsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().IntVar(&particles, "particles", def.Particles, "particle count (must be a perfect cube)")
	cmd.Flags().IntVar(&steps, "steps", def.Steps, "number of integration steps")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep in seconds")
	cmd.Flags().Float64Var(&epsilon, "epsilon", def.Epsilon, "potential well depth")
	cmd.Flags().Float64Var(&sigma, "sigma", def.Sigma, "potential characteristic length")
	cmd.Flags().Float64Var(&mass, "mass", def.Mass, "particle mass")
	cmd.Flags().Float64Var(&velStdDev, "vel-stddev", def.VelocityStdDev, "initial velocity standard deviation")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&bndMode, "boundary", def.Boundary, "boundary mode (closed)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel force workers (0 = serial)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func banner() {
	fmt.Printf("mdsim %s (molecular dynamics simulation)\n", version)
}

// resolveConfig merges preset, config file and CLI flags, in that
// precedence order (flags win).
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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

	if cmd.Flags().Changed("particles") {
		cfg.Particles = particles
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Sigma = sigma
	}
	if cmd.Flags().Changed("mass") {
		cfg.Mass = mass
	}
	if cmd.Flags().Changed("vel-stddev") {
		cfg.VelocityStdDev = velStdDev
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("boundary") {
		cfg.Boundary = bndMode
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("snapshots") {
		cfg.Snapshots = snapshots
	}

	return cfg, nil
}

func buildSimulation(cfg *config.Config) (md.Params, *md.System, *sim.Simulator, *forces.LennardJones, error) {
	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return params, nil, nil, nil, err
	}

	lj := forces.NewLennardJones(params)
	lj.Workers = cfg.Workers

	bnd, err := boundary.New(params)
	if err != nil {
		return params, nil, nil, nil, err
	}

	sys, err := initial.NewSystem(params)
	if err != nil {
		return params, nil, nil, nil, err
	}

	s := sim.New(lj, bnd, params)
	s.AddMetric(metrics.NewKinetic(params.Mass))
	s.AddMetric(metrics.NewTotalEnergy(lj))
	s.AddMetric(metrics.NewEnergyDrift(lj))
	s.AddMetric(metrics.NewMomentum(params.Mass))

	return params, sys, s, lj, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	banner()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	params, sys, s, _, err := buildSimulation(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	started := time.Now()
	runID, runDir, err := st.CreateRun(started)
	if err != nil {
		return err
	}

	var writer *storage.SnapshotWriter
	if cfg.Snapshots {
		writer = storage.NewSnapshotWriter(runDir, 0)
		s.AddObserver(writer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d particles for %d steps (dt=%g)...\n", params.Particles, params.Steps, params.Dt)

	result, runErr := s.Run(ctx, sys)

	if writer != nil {
		if err := writer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: snapshot writer: %v\n", err)
		}
		if n := writer.Dropped(); n > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d snapshots dropped (slow sink)\n", n)
		}
	}

	if result != nil {
		if err := st.SaveMetadata(runID, params, result.Metrics, started); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving metadata: %v\n", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", time.Since(started))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	params, sys, _, lj, err := buildSimulation(cfg)
	if err != nil {
		return err
	}

	bnd, err := boundary.New(params)
	if err != nil {
		return err
	}

	return viz.Run(sys, lj, bnd, params, stepsPerFrame, frameRate)
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
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tSTEPS\tDT\tBOUNDARY\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Dt,
			run.Boundary,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMeta(runID)
	if err != nil {
		return err
	}

	stepIdx, err := st.Snapshots(runID)
	if err != nil {
		return err
	}
	if len(stepIdx) == 0 {
		return fmt.Errorf("run %s has no snapshots (re-run with --snapshots)", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Particles)
	fmt.Printf("snapshots: %d\n\n", len(stepIdx))

	axes := []string{"x", "y", "z"}
	series := make([][]float64, 3)
	for k := range series {
		series[k] = make([]float64, 0, len(stepIdx))
	}

	for _, step := range stepIdx {
		pos, err := st.LoadSnapshot(runID, step)
		if err != nil {
			return err
		}
		if particleIdx < 0 || particleIdx >= len(pos) {
			return fmt.Errorf("particle index %d out of range [0, %d)", particleIdx, len(pos))
		}
		for k := 0; k < 3; k++ {
			series[k] = append(series[k], pos[particleIdx][k])
		}
	}

	for k, axis := range axes {
		graph := asciigraph.Plot(series[k],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("particle %d: %s vs snapshot", particleIdx, axis)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMeta(runID)
	if err != nil {
		return err
	}

	stepIdx, err := st.Snapshots(runID)
	if err != nil {
		return err
	}
	if len(stepIdx) < 2 {
		return fmt.Errorf("run %s has %d snapshots, need at least 2 (re-run with --snapshots)", runID, len(stepIdx))
	}

	frames := make([][]md.Vec3, 0, len(stepIdx))
	for _, step := range stepIdx {
		pos, err := st.LoadSnapshot(runID, step)
		if err != nil {
			return err
		}
		frames = append(frames, pos)
	}

	msd, err := analysis.MSD(frames)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%d particles, dt=%g)\n\n", meta.ID, meta.Particles, meta.Dt)
	graph := asciigraph.Plot(msd,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean squared displacement vs snapshot"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.LoadMeta(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
