package generator

import (
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

// dfsNeighborOrder is the candidate order inspected at each stack top. The
// order feeds the PRNG-indexed pick and is observable in the output.
var dfsNeighborOrder = [4][2]int{{0, -2}, {2, 0}, {0, 2}, {-2, 0}}

// GenerateDFS carves a maze with a recursive backtracker driven by an
// explicit stack, seeded at (0, 0).
func GenerateDFS(rows, cols int, r *rng.LCG, _ Params) (*models.MazeSpec, error) {
	grid := models.NewGrid(rows, cols)
	grid.Set(0, 0, models.Passage)
	stack := []models.Cell{{X: 0, Y: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		var candidates []models.Cell
		for _, d := range dfsNeighborOrder {
			nx, ny := top.X+d[0], top.Y+d[1]
			if grid.InBounds(nx, ny) && grid.At(nx, ny) == models.Wall {
				candidates = append(candidates, models.Cell{X: nx, Y: ny})
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := candidates[r.IntN(len(candidates))]
		grid.Set((top.X+next.X)/2, (top.Y+next.Y)/2, models.Passage)
		grid.Set(next.X, next.Y, models.Passage)
		stack = append(stack, next)
	}

	start := pickPassage(r, grid)
	goal := pickPassage(r, grid)
	for goal == start {
		goal = pickPassage(r, grid)
	}

	return &models.MazeSpec{Grid: grid, Start: start, Goal: goal}, nil
}
