package generator

import (
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

// wilsonDirections is the uniform direction draw of the random walk. An
// out-of-bounds result is skipped but the draw still advances the PRNG.
var wilsonDirections = [4][2]int{{2, 0}, {-2, 0}, {0, 2}, {0, -2}}

// GenerateWilson builds a maze from loop-erased random walks over the room
// lattice: each walk starts at a random room outside the maze, erases any
// loop it closes, and is carved in once it touches the maze.
func GenerateWilson(rows, cols int, r *rng.LCG, _ Params) (*models.MazeSpec, error) {
	offset := 1
	if r.Coin() {
		offset = 0
	}
	lattice, err := newRoomLattice(rows, cols, offset)
	if err != nil {
		return nil, err
	}

	grid := models.NewGrid(rows, cols)
	inMaze := make([]bool, lattice.count())

	carve := func(room int) {
		c := lattice.cell(room)
		grid.Set(c.X, c.Y, models.Passage)
	}

	seed := r.IntN(lattice.count())
	inMaze[seed] = true
	carve(seed)
	remaining := lattice.count() - 1

	for remaining > 0 {
		outside := make([]int, 0, remaining)
		for i, in := range inMaze {
			if !in {
				outside = append(outside, i)
			}
		}
		root := outside[r.IntN(len(outside))]

		path := []int{root}
		pathIndex := map[int]int{root: 0}
		cur := root

		for {
			c := lattice.cell(cur)
			d := wilsonDirections[r.IntN(4)]
			nx, ny := c.X+d[0], c.Y+d[1]
			if !grid.InBounds(nx, ny) {
				continue
			}
			next := lattice.index(nx, ny)

			if inMaze[next] {
				path = append(path, next)
				break
			}
			if pos, seen := pathIndex[next]; seen {
				// Loop erasure: drop everything after the revisited room.
				path = path[:pos+1]
				pathIndex = make(map[int]int, len(path))
				for i, room := range path {
					pathIndex[room] = i
				}
				cur = next
				continue
			}
			pathIndex[next] = len(path)
			path = append(path, next)
			cur = next
		}

		for i, room := range path {
			if !inMaze[room] {
				inMaze[room] = true
				remaining--
			}
			carve(room)
			if i > 0 {
				a, b := lattice.cell(path[i-1]), lattice.cell(room)
				grid.Set((a.X+b.X)/2, (a.Y+b.Y)/2, models.Passage)
			}
		}
	}

	start := pickPassage(r, grid)
	goal := pickPassage(r, grid)
	if goal == start {
		goal = pickPassage(r, grid)
	}

	return &models.MazeSpec{Grid: grid, Start: start, Goal: goal}, nil
}
