package generator

import (
	"errors"
	"testing"

	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/pkg/models"
)

func TestSearchformerPlanLength(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		spec, err := GenerateSearchformer(10, 10, rng.New(seed), DefaultParams())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		res := solver.Solve(spec.Grid, spec.Start, spec.Goal, solver.Manhattan)
		if res.Plan == nil {
			t.Fatalf("seed %d: committed spec is unsolvable", seed)
		}
		if len(res.Plan) < 10 {
			t.Fatalf("seed %d: plan length %d below max(rows, cols)", seed, len(res.Plan))
		}
	}
}

func TestSearchformerWallDensity(t *testing.T) {
	spec, err := GenerateSearchformer(10, 10, rng.New(3), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	walls := 0
	for _, c := range spec.Grid.Cells {
		if c == models.Wall {
			walls++
		}
	}
	if walls < 30 || walls > 50 {
		t.Fatalf("wall count %d outside 30..50 for a 10x10 grid", walls)
	}
}

func TestDrunkardsWalkCoverage(t *testing.T) {
	tests := []struct {
		rows, cols int
		coverage   float64
		want       int
	}{
		{4, 4, 0.75, 12},
		{10, 10, 0.5, 50},
		{5, 5, 0.05, 2}, // clamped to the two-cell minimum
	}
	for _, tt := range tests {
		p := DefaultParams()
		p.Coverage = tt.coverage
		spec, err := GenerateDrunkardsWalk(tt.rows, tt.cols, rng.New(7), p)
		if err != nil {
			t.Fatalf("%dx%d coverage %v: %v", tt.rows, tt.cols, tt.coverage, err)
		}
		carved := 0
		for _, c := range spec.Grid.Cells {
			if c == models.Passage {
				carved++
			}
		}
		if carved != tt.want {
			t.Fatalf("%dx%d coverage %v: carved %d cells, want %d", tt.rows, tt.cols, tt.coverage, carved, tt.want)
		}
	}
}

func TestDrunkardsWalkTinyGrid(t *testing.T) {
	_, err := GenerateDrunkardsWalk(1, 1, rng.New(1), DefaultParams())
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}

func TestDFSCellParity(t *testing.T) {
	// The backtracker carves even-even cells plus the midpoints between
	// them, so a cell with both coordinates odd is never carved.
	spec, err := GenerateDFS(9, 9, rng.New(11), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if x%2 == 1 && y%2 == 1 && spec.Grid.At(x, y) == models.Passage {
				t.Fatalf("odd-odd cell (%d,%d) carved by dfs", x, y)
			}
		}
	}
}

func TestKruskalRoomParity(t *testing.T) {
	spec, err := GenerateKruskal(9, 9, rng.New(2), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	// All rooms share one parity offset; passages appear only at room cells
	// and at the midpoint between two adjacent rooms, so no passage has
	// both coordinates off the room parity.
	offsets := map[int]bool{}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if spec.Grid.At(x, y) == models.Passage && x%2 == y%2 {
				offsets[x%2] = true
			}
		}
	}
	if len(offsets) > 1 {
		t.Fatalf("passages found on both parity lattices: %v", offsets)
	}
}

func TestCellularAutomataZeroIterations(t *testing.T) {
	// With iterations=0 the grid is exactly the Bernoulli field, so the
	// passage count must match an independent replay of the draws.
	p := DefaultParams()
	p.Iterations = 0
	spec, err := GenerateCellularAutomata(6, 6, rng.New(42), p)
	if err != nil {
		t.Fatal(err)
	}

	replay := rng.New(42)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			wantWall := replay.Float() < p.FillProbability
			gotWall := spec.Grid.At(x, y) == models.Wall
			if wantWall != gotWall {
				t.Fatalf("cell (%d,%d): wall=%v, want %v", x, y, gotWall, wantWall)
			}
		}
	}
}

func TestCellularAutomataAllWallsFails(t *testing.T) {
	p := DefaultParams()
	p.FillProbability = 1
	_, err := GenerateCellularAutomata(8, 8, rng.New(1), p)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}
