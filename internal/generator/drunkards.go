package generator

import (
	"fmt"

	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

// drunkardSteps is the step order offered to the walker at each cell, before
// the in-bounds filter.
var drunkardSteps = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// GenerateDrunkardsWalk carves passages with a single random walker until
// the coverage target is met. Coverage counts all cells, boundary included.
func GenerateDrunkardsWalk(rows, cols int, r *rng.LCG, p Params) (*models.MazeSpec, error) {
	total := rows * cols
	target := int(float64(total) * p.Coverage)
	if target > total {
		target = total
	}
	if target < 2 {
		target = 2
	}
	if total < 2 {
		return nil, fmt.Errorf("%w: coverage %v leaves fewer than two passage cells in a %dx%d grid",
			ErrInvalidParameter, p.Coverage, rows, cols)
	}

	grid := models.NewGrid(rows, cols)
	x, y := r.IntN(cols), r.IntN(rows)
	grid.Set(x, y, models.Passage)
	carved := 1

	for carved < target {
		var moves [][2]int
		for _, d := range drunkardSteps {
			if grid.InBounds(x+d[0], y+d[1]) {
				moves = append(moves, d)
			}
		}
		d := moves[r.IntN(len(moves))]
		x += d[0]
		y += d[1]
		if grid.At(x, y) == models.Wall {
			grid.Set(x, y, models.Passage)
			carved++
		}
	}

	passages := passageCells(grid)
	if len(passages) < 2 {
		return nil, fmt.Errorf("%w: walk carved fewer than two passage cells", ErrInvalidParameter)
	}
	a := r.IntN(len(passages))
	b := r.IntN(len(passages))
	for b == a {
		b = r.IntN(len(passages))
	}

	return &models.MazeSpec{Grid: grid, Start: passages[a], Goal: passages[b]}, nil
}
