package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lamim/mazeforge/internal/config"
	"github.com/lamim/mazeforge/internal/generator"
	"github.com/lamim/mazeforge/internal/metrics"
	"github.com/lamim/mazeforge/internal/pipeline"
	"github.com/lamim/mazeforge/internal/server"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/internal/writer"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	verbose    bool
	staticDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mazeforge",
		Short: "MazeForge - Deterministic maze search-trace dataset generator",
		Long: `MazeForge generates reproducible datasets of grid mazes paired with
A* search traces. Each output line is a JSON object holding the token
stream for one example: maze layout, solver reasoning events and the
final plan. The same configuration always produces byte-identical
output, independent of batch size and worker count.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		RunE:         runGenerate,
		SilenceUsage: true,
	}

	f := rootCmd.Flags()
	f.StringP("generator", "g", "", "Maze generator algorithm (required)")
	f.StringP("solver", "s", "", "Solver algorithm (required)")
	f.IntP("rows", "r", 30, "Grid rows")
	f.IntP("cols", "c", 30, "Grid cols")
	f.StringP("mode", "m", "train", "Dataset split: train or test")
	f.Int64("seed", 42, "Base PRNG seed")
	f.IntP("count", "n", 1, "Number of examples to emit")
	f.Int("batch-size", 500, "Initial batch size")
	f.Int("max-batch-size", 2000, "Upper bound for dynamic batch growth")
	f.Int("producer-buffer", 9, "Batches buffered between producer and workers")
	f.Int("workers", 0, "Solver workers (0 = NumCPU-2)")
	f.StringP("output", "o", "", "Output file path (default: stdout)")
	f.String("metrics-addr", "", "Prometheus scrape address, e.g. :2112")

	// Generator parameters, named exactly as they appear in the dataset
	// tooling that drives this binary.
	f.Float64("coverage", 0.5, "drunkards_walk: fraction of cells to carve")
	f.Float64("fillProbability", 0.45, "cellular_automata: initial wall probability")
	f.Int("survivalThreshold", 4, "cellular_automata: wall becomes passage below this many wall neighbors")
	f.Int("birthThreshold", 5, "cellular_automata: passage becomes wall above this many wall neighbors")
	f.Int("iterations", 3, "cellular_automata: smoothing iterations")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	_ = rootCmd.MarkFlagRequired("generator")
	_ = rootCmd.MarkFlagRequired("solver")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available generators and solvers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Generators:")
			for _, name := range generator.Names() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("Solvers:")
			for _, name := range solver.Names() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the maze visualization UI",
		Long: `Serve the static visualization UI and a small JSON API that generates
single mazes on demand. The listen port comes from the PORT environment
variable (default 8080). The API shares the generator and solver
registries with the dataset pipeline but is not part of the
deterministic output path.`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVar(&staticDir, "static-dir", "web", "Directory of static UI assets")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig layers defaults, the optional config file and explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("generator") || cfg.Generator == "" {
		cfg.Generator, _ = f.GetString("generator")
	}
	if f.Changed("solver") || cfg.Solver == "" {
		cfg.Solver, _ = f.GetString("solver")
	}
	if f.Changed("rows") {
		cfg.Rows, _ = f.GetInt("rows")
	}
	if f.Changed("cols") {
		cfg.Cols, _ = f.GetInt("cols")
	}
	if f.Changed("mode") {
		cfg.Mode, _ = f.GetString("mode")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("count") {
		cfg.Count, _ = f.GetInt("count")
	}
	if f.Changed("batch-size") {
		cfg.BatchSize, _ = f.GetInt("batch-size")
	}
	if f.Changed("max-batch-size") {
		cfg.MaxBatchSize, _ = f.GetInt("max-batch-size")
	}
	if f.Changed("producer-buffer") {
		cfg.ProducerBuffer, _ = f.GetInt("producer-buffer")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = f.GetString("metrics-addr")
	}
	if f.Changed("coverage") {
		cfg.Params.Coverage, _ = f.GetFloat64("coverage")
	}
	if f.Changed("fillProbability") {
		cfg.Params.FillProbability, _ = f.GetFloat64("fillProbability")
	}
	if f.Changed("survivalThreshold") {
		cfg.Params.SurvivalThreshold, _ = f.GetInt("survivalThreshold")
	}
	if f.Changed("birthThreshold") {
		cfg.Params.BirthThreshold, _ = f.GetInt("birthThreshold")
	}
	if f.Changed("iterations") {
		cfg.Params.Iterations, _ = f.GetInt("iterations")
	}

	return &cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gen, err := generator.Lookup(cfg.Generator)
	if err != nil {
		return fmt.Errorf("unknown generator %q (available: %s)",
			cfg.Generator, strings.Join(generator.Names(), ", "))
	}
	solve, err := solver.Lookup(cfg.Solver)
	if err != nil {
		return fmt.Errorf("unknown solver %q (available: %s)",
			cfg.Solver, strings.Join(solver.Names(), ", "))
	}

	logger := writer.SetupLogger(verbose)
	logger.Info("MazeForge starting", "version", Version, "generator", cfg.Generator, "solver", cfg.Solver)

	if cfg.MetricsAddr != "" {
		metrics.Serve(cfg.MetricsAddr, logger)
		logger.Info("Metrics enabled", "addr", cfg.MetricsAddr)
	}

	sink, err := writer.NewSink(cfg.Output, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, gen, solve, logger)
	p.ShowProgress = cfg.Output != ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := p.Run(ctx, sink)
	if closeErr := sink.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return fmt.Errorf("generation failed: %w", runErr)
	}

	stats := p.Stats()
	logger.Info("Generation complete",
		"examples", stats.TotalExamples,
		"batches", stats.BatchCount,
		"duration", stats.TotalDuration)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := writer.SetupLogger(verbose)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.New(staticDir, logger)
	logger.Info("Visualization server listening", "port", port, "static_dir", staticDir)
	return srv.ListenAndServe(":" + port)
}
