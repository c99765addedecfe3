package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/lamim/mazeforge/internal/config"
	"github.com/lamim/mazeforge/internal/generator"
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/pkg/models"
)

type memSink struct {
	buf     bytes.Buffer
	batches int
	sizes   []int // examples per written batch
}

func (s *memSink) WriteBatch(data []byte) error {
	s.batches++
	s.sizes = append(s.sizes, bytes.Count(data, []byte("\n")))
	_, err := s.buf.Write(data)
	return err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func runPipeline(t *testing.T, cfg config.Config, gen generator.Func, solve solver.Func) *memSink {
	t.Helper()
	sink := &memSink{}
	p := New(&cfg, gen, solve, testLogger())
	if err := p.Run(context.Background(), sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return sink
}

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.Generator = "wilson"
	cfg.Rows = 6
	cfg.Cols = 6
	cfg.Count = 40
	return cfg
}

func TestByteIdentityAcrossBatchSizes(t *testing.T) {
	gen, _ := generator.Lookup("wilson")

	var reference []byte
	for i, batchSize := range []int{1, 3, 500, 10000} {
		cfg := baseConfig()
		cfg.BatchSize = batchSize
		if cfg.MaxBatchSize < batchSize {
			cfg.MaxBatchSize = batchSize
		}
		sink := runPipeline(t, cfg, gen, solver.Solve)
		if i == 0 {
			reference = sink.buf.Bytes()
			continue
		}
		if !bytes.Equal(sink.buf.Bytes(), reference) {
			t.Fatalf("batch size %d changed the output stream", batchSize)
		}
	}
}

func TestByteIdentityAcrossWorkerCounts(t *testing.T) {
	gen, _ := generator.Lookup("dfs")

	var reference []byte
	for i, workers := range []int{1, 2, 8} {
		cfg := baseConfig()
		cfg.Generator = "dfs"
		cfg.Count = 120 // above the small-run worker cap
		cfg.BatchSize = 7
		cfg.Workers = workers
		sink := runPipeline(t, cfg, gen, solver.Solve)
		if i == 0 {
			reference = sink.buf.Bytes()
			continue
		}
		if !bytes.Equal(sink.buf.Bytes(), reference) {
			t.Fatalf("worker count %d changed the output stream", workers)
		}
	}
}

func TestByteIdentityRepeatedRuns(t *testing.T) {
	gen, _ := generator.Lookup("kruskal")
	cfg := baseConfig()
	cfg.Generator = "kruskal"
	cfg.Count = 100

	a := runPipeline(t, cfg, gen, solver.Solve)
	b := runPipeline(t, cfg, gen, solver.Solve)
	if !bytes.Equal(a.buf.Bytes(), b.buf.Bytes()) {
		t.Fatal("two identical runs produced different bytes")
	}
}

func TestLineCountAndShape(t *testing.T) {
	gen, _ := generator.Lookup("dfs")
	cfg := baseConfig()
	cfg.Generator = "dfs"
	cfg.Count = 25
	sink := runPipeline(t, cfg, gen, solver.Solve)

	lines := strings.Split(strings.TrimRight(sink.buf.String(), "\n"), "\n")
	if len(lines) != 25 {
		t.Fatalf("got %d lines, want 25", len(lines))
	}
	for i, line := range lines {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if !strings.HasPrefix(obj.Text, "query start ") || !strings.HasSuffix(obj.Text, " end") {
			t.Fatalf("line %d token stream malformed", i)
		}
	}
}

// jitterSolve delays each solve by a random amount so workers complete out
// of order; the consumer must still yield index order.
func jitterSolve(grid *models.Grid, start, goal models.Cell, h solver.Heuristic) *models.SearchResult {
	time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
	return solver.Solve(grid, start, goal, h)
}

func TestOrderingUnderJitter(t *testing.T) {
	// Index-coded specs: example i gets a 1x(2+i%7) corridor, so the goal
	// column in each line reveals the generation index modulo 7.
	counter := 0
	gen := func(rows, cols int, r *rng.LCG, p generator.Params) (*models.MazeSpec, error) {
		width := 2 + counter%7
		counter++
		g := models.NewGrid(1, width)
		for x := 0; x < width; x++ {
			g.Set(x, 0, models.Passage)
		}
		return &models.MazeSpec{
			Grid:  g,
			Start: models.Cell{X: 0, Y: 0},
			Goal:  models.Cell{X: width - 1, Y: 0},
		}, nil
	}

	cfg := baseConfig()
	cfg.Count = 200
	cfg.BatchSize = 3
	cfg.Workers = 8
	sink := runPipeline(t, cfg, gen, jitterSolve)

	lines := strings.Split(strings.TrimRight(sink.buf.String(), "\n"), "\n")
	if len(lines) != 200 {
		t.Fatalf("got %d lines, want 200", len(lines))
	}
	for i, line := range lines {
		wantGoal := fmt.Sprintf("goal %d 0", 2+i%7-1)
		if !strings.Contains(line, wantGoal) {
			t.Fatalf("line %d out of order: missing %q in %s", i, wantGoal, line)
		}
	}
}

func TestGeneratorErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	gen := func(rows, cols int, r *rng.LCG, p generator.Params) (*models.MazeSpec, error) {
		calls++
		if calls > 5 {
			return nil, boom
		}
		g := models.NewGrid(1, 2)
		g.Set(0, 0, models.Passage)
		g.Set(1, 0, models.Passage)
		return &models.MazeSpec{Grid: g, Start: models.Cell{X: 0, Y: 0}, Goal: models.Cell{X: 1, Y: 0}}, nil
	}

	cfg := baseConfig()
	cfg.Count = 50
	cfg.BatchSize = 2
	p := New(&cfg, gen, solver.Solve, testLogger())
	err := p.Run(context.Background(), &memSink{})
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want wrapped boom", err)
	}
}

func TestSolverNoPlanIsFatal(t *testing.T) {
	gen := func(rows, cols int, r *rng.LCG, p generator.Params) (*models.MazeSpec, error) {
		// Disconnected endpoints: the solver cannot produce a plan.
		g := models.NewGrid(1, 3)
		g.Set(0, 0, models.Passage)
		g.Set(2, 0, models.Passage)
		return &models.MazeSpec{Grid: g, Start: models.Cell{X: 0, Y: 0}, Goal: models.Cell{X: 2, Y: 0}}, nil
	}

	cfg := baseConfig()
	cfg.Count = 3
	p := New(&cfg, gen, solver.Solve, testLogger())
	if err := p.Run(context.Background(), &memSink{}); err == nil {
		t.Fatal("expected fatal error for unsolvable maze")
	}
}

func TestDynamicBatchSizeMonotone(t *testing.T) {
	gen, _ := generator.Lookup("dfs")
	cfg := baseConfig()
	cfg.Generator = "dfs"
	cfg.Rows = 15
	cfg.Cols = 15
	cfg.Count = 300
	cfg.BatchSize = 1
	cfg.MaxBatchSize = 64
	cfg.Workers = 4

	p := New(&cfg, gen, solver.Solve, testLogger())
	sink := &memSink{}
	if err := p.Run(context.Background(), sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Every batch but the last (clipped to count) has the size sampled by
	// the producer, so the sizes seen by the sink must never shrink.
	for i := 1; i < len(sink.sizes)-1; i++ {
		if sink.sizes[i] < sink.sizes[i-1] {
			t.Fatalf("batch %d has %d examples after %d", i, sink.sizes[i], sink.sizes[i-1])
		}
	}
	final := p.Stats().FinalBatch
	if final < cfg.BatchSize || final > cfg.MaxBatchSize {
		t.Fatalf("final batch size %d outside [%d, %d]", final, cfg.BatchSize, cfg.MaxBatchSize)
	}
}

func TestZeroCount(t *testing.T) {
	gen, _ := generator.Lookup("dfs")
	cfg := baseConfig()
	cfg.Count = 0
	sink := runPipeline(t, cfg, gen, solver.Solve)
	if sink.buf.Len() != 0 {
		t.Fatalf("expected empty output, got %d bytes", sink.buf.Len())
	}
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		count, requested, want int
	}{
		{1, 4, 1},      // capped by count
		{50, 4, 2},     // small run cap
		{50, 1, 1},     // explicit below cap
		{1000, 4, 4},   // explicit request
		{1000, 2000, 1000}, // capped by count
	}
	for _, tt := range tests {
		if got := workerCount(tt.count, tt.requested); got != tt.want {
			t.Errorf("workerCount(%d, %d) = %d, want %d", tt.count, tt.requested, got, tt.want)
		}
	}
	if got := workerCount(0, 4); got != 1 {
		t.Errorf("workerCount(0, 4) = %d, want 1", got)
	}
}

func TestCancellation(t *testing.T) {
	gen := func(rows, cols int, r *rng.LCG, p generator.Params) (*models.MazeSpec, error) {
		time.Sleep(time.Millisecond)
		g := models.NewGrid(1, 2)
		g.Set(0, 0, models.Passage)
		g.Set(1, 0, models.Passage)
		return &models.MazeSpec{Grid: g, Start: models.Cell{X: 0, Y: 0}, Goal: models.Cell{X: 1, Y: 0}}, nil
	}

	cfg := baseConfig()
	cfg.Count = 10000
	cfg.BatchSize = 10
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	p := New(&cfg, gen, solver.Solve, testLogger())
	err := p.Run(ctx, &memSink{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}
