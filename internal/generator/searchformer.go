package generator

import (
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/pkg/models"
)

// searchformerAttempts bounds the start/goal search before the wall layout
// is resampled.
const searchformerAttempts = 100

// GenerateSearchformer samples a wall layout with 30-50% wall density, then
// hunts for a start/goal pair whose shortest path spans at least
// max(rows, cols) cells. Layouts that exhaust the attempt budget are thrown
// away and resampled.
func GenerateSearchformer(rows, cols int, r *rng.LCG, _ Params) (*models.MazeSpec, error) {
	total := rows * cols
	base := total / 10
	minWalls := 3 * base
	maxWalls := 5 * base
	minPlan := rows
	if cols > minPlan {
		minPlan = cols
	}

	for {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		rng.Shuffle(r, indices)
		numWalls := minWalls + r.IntN(maxWalls-minWalls+1)

		grid := models.NewGrid(rows, cols)
		for _, i := range indices[numWalls:] {
			grid.Cells[i] = models.Passage
		}

		free := make([]int, total-numWalls)
		copy(free, indices[numWalls:])

		for attempt := 0; attempt < searchformerAttempts; attempt++ {
			rng.Shuffle(r, free)
			start := models.Cell{X: free[0] % cols, Y: free[0] / cols}
			goal := models.Cell{X: free[1] % cols, Y: free[1] / cols}

			res := solver.Solve(grid, start, goal, solver.Manhattan)
			if res.Plan != nil && len(res.Plan) >= minPlan {
				return &models.MazeSpec{Grid: grid, Start: start, Goal: goal}, nil
			}
		}
	}
}
