// Package config holds the run configuration assembled from defaults, an
// optional TOML file and CLI flags, and validates it before any generation
// starts.
package config

import (
	"fmt"

	"github.com/lamim/mazeforge/internal/generator"
)

// Modes of a dataset run. The mode contributes the parity bit of the
// effective PRNG seed, keeping the train and test splits disjoint.
const (
	ModeTrain = "train"
	ModeTest  = "test"
)

// Config is the complete configuration of a generation run. Everything is
// fixed once validated; only the batch size may grow at runtime, and that
// lives in the pipeline, not here.
type Config struct {
	Generator      string  `toml:"generator"`
	Solver         string  `toml:"solver"`
	Rows           int     `toml:"rows"`
	Cols           int     `toml:"cols"`
	Mode           string  `toml:"mode"`
	Seed           int64   `toml:"seed"`
	Count          int     `toml:"count"`
	BatchSize      int     `toml:"batch_size"`
	MaxBatchSize   int     `toml:"max_batch_size"`
	ProducerBuffer int     `toml:"producer_buffer"`
	Workers        int     `toml:"workers"` // 0 = NumCPU-2
	Output         string  `toml:"output"`  // empty = stdout
	MetricsAddr    string  `toml:"metrics_addr"`

	Params GeneratorParams `toml:"generator_params"`
}

// GeneratorParams mirrors generator.Params with TOML tags matching the CLI
// flag names.
type GeneratorParams struct {
	Coverage          float64 `toml:"coverage"`
	FillProbability   float64 `toml:"fillProbability"`
	SurvivalThreshold int     `toml:"survivalThreshold"`
	BirthThreshold    int     `toml:"birthThreshold"`
	Iterations        int     `toml:"iterations"`
}

// Default returns the documented defaults for every option.
func Default() Config {
	p := generator.DefaultParams()
	return Config{
		Solver:         "astar",
		Rows:           30,
		Cols:           30,
		Mode:           ModeTrain,
		Seed:           42,
		Count:          1,
		BatchSize:      500,
		MaxBatchSize:   2000,
		ProducerBuffer: 9,
		Params: GeneratorParams{
			Coverage:          p.Coverage,
			FillProbability:   p.FillProbability,
			SurvivalThreshold: p.SurvivalThreshold,
			BirthThreshold:    p.BirthThreshold,
			Iterations:        p.Iterations,
		},
	}
}

// GeneratorParams converts the config view into the generator package type.
func (c *Config) GeneratorParams() generator.Params {
	return generator.Params{
		Coverage:          c.Params.Coverage,
		FillProbability:   c.Params.FillProbability,
		SurvivalThreshold: c.Params.SurvivalThreshold,
		BirthThreshold:    c.Params.BirthThreshold,
		Iterations:        c.Params.Iterations,
	}
}

// Validate checks every numeric option and the generator parameters. Name
// resolution against the generator and solver registries happens at the CLI
// layer so the error message can list the available names.
func (c *Config) Validate() error {
	if c.Mode != ModeTrain && c.Mode != ModeTest {
		return fmt.Errorf("mode must be %q or %q (got %q)", ModeTrain, ModeTest, c.Mode)
	}
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("grid dimensions must be positive (got %dx%d)", c.Rows, c.Cols)
	}
	if c.Rows == 1 && c.Cols == 1 {
		return fmt.Errorf("1x1 grids are unsupported: start and goal cannot be distinct")
	}
	if c.Count < 0 {
		return fmt.Errorf("count must be >= 0 (got %d)", c.Count)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch-size must be >= 1 (got %d)", c.BatchSize)
	}
	if c.MaxBatchSize < c.BatchSize {
		return fmt.Errorf("max-batch-size %d is below batch-size %d", c.MaxBatchSize, c.BatchSize)
	}
	if c.ProducerBuffer < 1 {
		return fmt.Errorf("producer-buffer must be >= 1 (got %d)", c.ProducerBuffer)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if err := c.GeneratorParams().Validate(); err != nil {
		return err
	}
	return nil
}
