package generator

import (
	"fmt"

	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

// GenerateCellularAutomata seeds the grid with random walls and smooths it
// with a cave-style automaton. Cells outside the grid count as alive (wall)
// in the 8-neighborhood, which keeps the boundary closed. The headless path
// performs no connectivity check; the parameter ranges in use keep the
// caves connected in practice.
func GenerateCellularAutomata(rows, cols int, r *rng.LCG, p Params) (*models.MazeSpec, error) {
	grid := models.NewGrid(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if r.Float() < p.FillProbability {
				grid.Set(x, y, models.Wall)
			} else {
				grid.Set(x, y, models.Passage)
			}
		}
	}

	for it := 0; it < p.Iterations; it++ {
		next := models.NewGrid(rows, cols)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				alive := wallNeighbors(grid, x, y)
				if grid.At(x, y) == models.Wall {
					if alive < p.SurvivalThreshold {
						next.Set(x, y, models.Passage)
					} else {
						next.Set(x, y, models.Wall)
					}
				} else {
					if alive > p.BirthThreshold {
						next.Set(x, y, models.Wall)
					} else {
						next.Set(x, y, models.Passage)
					}
				}
			}
		}
		grid = next
	}

	passages := passageCells(grid)
	if len(passages) < 2 {
		return nil, fmt.Errorf("%w: automaton left fewer than two passage cells", ErrInvalidParameter)
	}
	a := r.IntN(len(passages))
	b := r.IntN(len(passages))
	for b == a {
		b = r.IntN(len(passages))
	}

	return &models.MazeSpec{Grid: grid, Start: passages[a], Goal: passages[b]}, nil
}

// wallNeighbors counts wall cells in the 8-neighborhood; out-of-grid
// positions count as walls.
func wallNeighbors(g *models.Grid, x, y int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) || g.At(nx, ny) == models.Wall {
				count++
			}
		}
	}
	return count
}
