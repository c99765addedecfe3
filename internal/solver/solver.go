// Package solver hosts the search algorithms that trace a maze. A solver
// consumes no randomness; its entire output is a pure function of the grid
// and endpoints, including the order of trace events.
package solver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lamim/mazeforge/pkg/models"
)

// ErrUnknownSolver is returned by Lookup for names not in the registry.
var ErrUnknownSolver = errors.New("unknown solver")

// Heuristic estimates the remaining cost from (x1, y1) to (x2, y2).
type Heuristic func(x1, y1, x2, y2 int) int

// Manhattan is the canonical heuristic: |x1-x2| + |y1-y2|.
func Manhattan(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Func runs a search over the grid and returns the reasoning trace and plan.
type Func func(grid *models.Grid, start, goal models.Cell, h Heuristic) *models.SearchResult

var registry = map[string]Func{
	"astar": Solve,
}

// Lookup returns the solver registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
	}
	return fn, nil
}

// Names returns the registered solver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
