// Package generator hosts the maze generation algorithms. Every randomized
// choice is drawn from the single shared PRNG through the rng package
// primitives, in an order that is part of the output format: reordering a
// draw changes the byte stream of an entire run.
package generator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

var (
	// ErrUnknownGenerator is returned by Lookup for names not in the registry.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrInvalidParameter reports a parameter outside its documented range,
	// or a grid and parameter combination a generator cannot satisfy (too
	// few passage cells or no rooms).
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Params carries the per-generator tuning knobs. Zero values are never used
// directly; DefaultParams supplies the documented defaults and the CLI layer
// overrides individual fields.
type Params struct {
	Coverage          float64 // drunkards_walk: fraction of cells to carve
	FillProbability   float64 // cellular_automata: initial wall probability
	SurvivalThreshold int     // cellular_automata: wall opens below this
	BirthThreshold    int     // cellular_automata: passage dies above this
	Iterations        int     // cellular_automata: smoothing passes
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		Coverage:          0.5,
		FillProbability:   0.45,
		SurvivalThreshold: 4,
		BirthThreshold:    5,
		Iterations:        3,
	}
}

// Validate checks every field against its documented range.
func (p Params) Validate() error {
	if p.Coverage <= 0 || p.Coverage > 1 {
		return fmt.Errorf("%w: coverage %v not in (0, 1]", ErrInvalidParameter, p.Coverage)
	}
	if p.FillProbability < 0 || p.FillProbability > 1 {
		return fmt.Errorf("%w: fillProbability %v not in [0, 1]", ErrInvalidParameter, p.FillProbability)
	}
	if p.SurvivalThreshold < 0 || p.SurvivalThreshold > 8 {
		return fmt.Errorf("%w: survivalThreshold %d not in 0..8", ErrInvalidParameter, p.SurvivalThreshold)
	}
	if p.BirthThreshold < 0 || p.BirthThreshold > 8 {
		return fmt.Errorf("%w: birthThreshold %d not in 0..8", ErrInvalidParameter, p.BirthThreshold)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d must be >= 0", ErrInvalidParameter, p.Iterations)
	}
	return nil
}

// Func generates one maze spec from the shared PRNG.
type Func func(rows, cols int, r *rng.LCG, p Params) (*models.MazeSpec, error)

var registry = map[string]Func{
	"dfs":               GenerateDFS,
	"kruskal":           GenerateKruskal,
	"wilson":            GenerateWilson,
	"searchformer":      GenerateSearchformer,
	"drunkards_walk":    GenerateDrunkardsWalk,
	"cellular_automata": GenerateCellularAutomata,
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}
	return fn, nil
}

// Names returns the registered generator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pickPassage rejection-samples coordinates until a passage cell is hit.
// Callers guarantee the grid holds at least one passage.
func pickPassage(r *rng.LCG, g *models.Grid) models.Cell {
	for {
		x := r.IntN(g.Cols)
		y := r.IntN(g.Rows)
		if g.At(x, y) == models.Passage {
			return models.Cell{X: x, Y: y}
		}
	}
}

// passageCells lists all passage cells in row-major order.
func passageCells(g *models.Grid) []models.Cell {
	var cells []models.Cell
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			if g.At(x, y) == models.Passage {
				cells = append(cells, models.Cell{X: x, Y: y})
			}
		}
	}
	return cells
}
