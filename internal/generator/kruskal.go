package generator

import (
	"fmt"

	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/pkg/models"
)

// roomLattice describes the parity-offset room grid shared by the Kruskal
// and Wilson generators: rooms sit at coordinates congruent to offset mod 2
// on both axes and act as the vertices of the connectivity graph.
type roomLattice struct {
	offset   int
	roomRows int
	roomCols int
}

func newRoomLattice(rows, cols, offset int) (roomLattice, error) {
	l := roomLattice{offset: offset}
	if cols > offset {
		l.roomCols = (cols-1-offset)/2 + 1
	}
	if rows > offset {
		l.roomRows = (rows-1-offset)/2 + 1
	}
	if l.roomRows == 0 || l.roomCols == 0 {
		return l, fmt.Errorf("%w: no rooms fit a %dx%d grid at offset %d", ErrInvalidParameter, rows, cols, offset)
	}
	return l, nil
}

func (l roomLattice) count() int { return l.roomRows * l.roomCols }

func (l roomLattice) cell(i int) models.Cell {
	return models.Cell{
		X: l.offset + (i%l.roomCols)*2,
		Y: l.offset + (i/l.roomCols)*2,
	}
}

func (l roomLattice) index(x, y int) int {
	return (y-l.offset)/2*l.roomCols + (x-l.offset)/2
}

// kruskalEdge joins two rooms across the intermediate wall cell.
type kruskalEdge struct {
	a, b  int
	wallX int
	wallY int
}

// GenerateKruskal builds a maze with randomized Kruskal over the room
// lattice, carving the wall between any two rooms whose union-find sets
// differ.
func GenerateKruskal(rows, cols int, r *rng.LCG, _ Params) (*models.MazeSpec, error) {
	offset := 1
	if r.Coin() {
		offset = 0
	}
	lattice, err := newRoomLattice(rows, cols, offset)
	if err != nil {
		return nil, err
	}

	grid := models.NewGrid(rows, cols)
	for i := 0; i < lattice.count(); i++ {
		c := lattice.cell(i)
		grid.Set(c.X, c.Y, models.Passage)
	}

	var edges []kruskalEdge
	for i := 0; i < lattice.count(); i++ {
		c := lattice.cell(i)
		if c.X+2 < cols {
			edges = append(edges, kruskalEdge{
				a: i, b: lattice.index(c.X+2, c.Y),
				wallX: c.X + 1, wallY: c.Y,
			})
		}
		if c.Y+2 < rows {
			edges = append(edges, kruskalEdge{
				a: i, b: lattice.index(c.X, c.Y+2),
				wallX: c.X, wallY: c.Y + 1,
			})
		}
	}
	rng.Shuffle(r, edges)

	uf := newUnionFind(lattice.count())
	for _, e := range edges {
		if uf.find(e.a) != uf.find(e.b) {
			uf.union(e.a, e.b)
			grid.Set(e.wallX, e.wallY, models.Passage)
		}
	}

	start := pickPassage(r, grid)
	goal := pickPassage(r, grid)
	if goal == start {
		goal = pickPassage(r, grid)
	}

	return &models.MazeSpec{Grid: grid, Start: start, Goal: goal}, nil
}

// unionFind with path compression. Union points find(a) at find(b).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(a int) int {
	if uf.parent[a] != a {
		uf.parent[a] = uf.find(uf.parent[a])
	}
	return uf.parent[a]
}

func (uf *unionFind) union(a, b int) {
	uf.parent[uf.find(a)] = uf.find(b)
}
