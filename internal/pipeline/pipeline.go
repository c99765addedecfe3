// Package pipeline orchestrates the producer, the solver worker pool and the
// ordered consumer. The producer owns the PRNG and generates specs strictly
// sequentially, so the global draw order matches a single-threaded run;
// parallelism covers only solving and serialization. Emission order to the
// sink equals example-index order regardless of worker timing.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/lamim/mazeforge/internal/codec"
	"github.com/lamim/mazeforge/internal/config"
	"github.com/lamim/mazeforge/internal/generator"
	"github.com/lamim/mazeforge/internal/metrics"
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/internal/serialize"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/pkg/models"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Sink receives fully serialized batches in strict example order.
type Sink interface {
	WriteBatch(data []byte) error
}

// item is one encoded maze spec tagged with its global example index.
type item struct {
	idx int
	enc []byte
}

// batch is a contiguous index range processed as a unit by one worker. done
// is closed once out holds the serialized lines for every item.
type batch struct {
	start int
	items []item
	out   []byte
	done  chan struct{}
}

// Pipeline runs one generation job end to end.
type Pipeline struct {
	cfg       *config.Config
	gen       generator.Func
	solve     solver.Func
	logger    *slog.Logger
	collector *metrics.Collector

	// ShowProgress enables the stderr progress bar; off in tests.
	ShowProgress bool

	batchSize   atomic.Int64
	busyWorkers atomic.Int64
	stats       models.RunStats
}

// New assembles a pipeline from a validated config and resolved registry
// entries.
func New(cfg *config.Config, gen generator.Func, solve solver.Func, logger *slog.Logger) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		gen:       gen,
		solve:     solve,
		logger:    logger,
		collector: metrics.NewCollector(cfg.Generator),
	}
	p.batchSize.Store(int64(cfg.BatchSize))
	return p
}

// Stats returns the run statistics recorded by the last Run call.
func (p *Pipeline) Stats() models.RunStats {
	return p.stats
}

// workerCount applies the sizing rule: max(1, min(count, requested or
// NumCPU-2)), capped at 2 for small runs.
func workerCount(count, requested int) int {
	w := requested
	if w <= 0 {
		w = runtime.NumCPU() - 2
	}
	if w > count {
		w = count
	}
	if w < 1 {
		w = 1
	}
	if count < 100 && w > 2 {
		w = 2
	}
	return w
}

// Run executes the pipeline until count examples have been yielded to the
// sink or a fatal error occurs. Any error tears down every goroutine via
// context cancellation; partial output already yielded stays in place.
func (p *Pipeline) Run(ctx context.Context, sink Sink) error {
	numWorkers := workerCount(p.cfg.Count, p.cfg.Workers)
	p.stats = models.RunStats{StartTime: time.Now()}

	p.logger.Info("Starting pipeline",
		"generator", p.cfg.Generator,
		"solver", p.cfg.Solver,
		"grid", fmt.Sprintf("%dx%d", p.cfg.Rows, p.cfg.Cols),
		"mode", p.cfg.Mode,
		"seed", p.cfg.Seed,
		"count", p.cfg.Count,
		"workers", numWorkers,
		"batch_size", p.cfg.BatchSize)

	credits := make(chan struct{}, p.cfg.ProducerBuffer)
	for i := 0; i < p.cfg.ProducerBuffer; i++ {
		credits <- struct{}{}
	}
	pending := make(chan *batch)
	work := make(chan *batch)
	order := make(chan *batch, p.cfg.ProducerBuffer+numWorkers+1)

	p.collector.SetBatchSize(p.cfg.BatchSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.produce(ctx, credits, pending, order) })
	g.Go(func() error { return p.dispatch(ctx, numWorkers, credits, pending, work) })
	for i := 0; i < numWorkers; i++ {
		workerLogger := p.logger.With("worker_id", i)
		g.Go(func() error { return p.work(ctx, workerLogger, work) })
	}
	g.Go(func() error { return p.consume(ctx, order, sink) })

	err := g.Wait()

	p.stats.EndTime = time.Now()
	p.stats.TotalDuration = p.stats.EndTime.Sub(p.stats.StartTime)
	p.stats.FinalBatch = int(p.batchSize.Load())
	if err != nil {
		return err
	}

	p.logger.Info("Pipeline complete",
		"examples", p.stats.TotalExamples,
		"batches", p.stats.BatchCount,
		"final_batch_size", p.stats.FinalBatch,
		"duration", p.stats.TotalDuration)
	return nil
}

// produce generates batches sequentially from the shared PRNG. One credit is
// consumed per batch; the dispatcher grants it back on handoff, bounding the
// batches buffered between generation and solving.
func (p *Pipeline) produce(ctx context.Context, credits <-chan struct{}, pending, order chan<- *batch) error {
	defer close(pending)
	defer close(order)

	r := rng.New(rng.EffectiveSeed(p.cfg.Seed, p.cfg.Mode == config.ModeTest))
	params := p.cfg.GeneratorParams()

	for start := 0; start < p.cfg.Count; {
		select {
		case <-credits:
		case <-ctx.Done():
			return ctx.Err()
		}

		// The size is sampled after the credit so a grow decision taken
		// while we were blocked applies to this batch already.
		size := int(p.batchSize.Load())
		end := start + size
		if end > p.cfg.Count {
			end = p.cfg.Count
		}

		b := &batch{start: start, done: make(chan struct{})}
		genStart := time.Now()
		for i := start; i < end; i++ {
			spec, err := p.gen(p.cfg.Rows, p.cfg.Cols, r, params)
			if err != nil {
				return fmt.Errorf("generator failed on examples %d-%d (at %d): %w", start, end-1, i, err)
			}
			b.items = append(b.items, item{idx: i, enc: codec.Encode(spec)})
		}
		p.collector.ObserveGenerate(time.Since(genStart))

		select {
		case pending <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case order <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		start = end
	}
	return nil
}

// dispatch moves batches from the producer to free workers, granting one
// credit per handoff. After a warm-up of numWorkers+1 batches, finding the
// pending queue empty while a worker is idle means generation is the
// bottleneck, and the batch size doubles up to the configured maximum.
func (p *Pipeline) dispatch(ctx context.Context, numWorkers int, credits chan<- struct{}, pending <-chan *batch, work chan<- *batch) error {
	defer close(work)

	warmup := numWorkers + 1
	dispatched := 0

	for {
		var b *batch
		select {
		case b = <-pending:
		default:
			if dispatched >= warmup && int(p.busyWorkers.Load()) < numWorkers {
				p.grow()
			}
			select {
			case b = <-pending:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if b == nil {
			return nil
		}

		select {
		case work <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		// Granting after handoff keeps at most ProducerBuffer batches
		// between generation and solving. Capacity matches, so this send
		// cannot block.
		credits <- struct{}{}
		dispatched++
		p.collector.BatchDispatched()
	}
}

// grow doubles the batch size up to MaxBatchSize. The producer observes the
// new value on its next batch; boundaries change, example order never does.
func (p *Pipeline) grow() {
	cur := p.batchSize.Load()
	next := cur * 2
	if next > int64(p.cfg.MaxBatchSize) {
		next = int64(p.cfg.MaxBatchSize)
	}
	if next == cur {
		return
	}
	p.batchSize.Store(next)
	p.collector.SetBatchSize(int(next))
	p.logger.Debug("Batch size increased", "from", cur, "to", next)
}

// work decodes, solves and serializes one batch at a time, synchronously
// start to finish.
func (p *Pipeline) work(ctx context.Context, logger *slog.Logger, work <-chan *batch) error {
	for b := range work {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.collector.SetActiveWorkers(int(p.busyWorkers.Add(1)))
		solveStart := time.Now()

		var out []byte
		for _, it := range b.items {
			spec, err := codec.Decode(it.enc)
			if err != nil {
				p.busyWorkers.Add(-1)
				return fmt.Errorf("corrupt encoded spec for example %d: %w", it.idx, err)
			}
			res := p.solve(spec.Grid, spec.Start, spec.Goal, solver.Manhattan)
			if res.Plan == nil {
				p.busyWorkers.Add(-1)
				return fmt.Errorf("solver found no plan for example %d (start %v, goal %v)", it.idx, spec.Start, spec.Goal)
			}
			line, err := serialize.Example(spec, res)
			if err != nil {
				p.busyWorkers.Add(-1)
				return fmt.Errorf("failed to serialize example %d: %w", it.idx, err)
			}
			out = append(out, line...)
		}

		b.out = out
		close(b.done)

		p.collector.SetActiveWorkers(int(p.busyWorkers.Add(-1)))
		p.collector.ObserveSolve(time.Since(solveStart))
		logger.Debug("Batch solved", "batch_start", b.start, "examples", len(b.items))
	}
	return nil
}

// consume yields batches in strict batchStart order. The order channel is
// filled by the producer in generation order; each batch is awaited and
// written as a single unit.
func (p *Pipeline) consume(ctx context.Context, order <-chan *batch, sink Sink) error {
	var bar *progressbar.ProgressBar
	if p.ShowProgress && p.cfg.Count > 0 {
		bar = progressbar.Default(int64(p.cfg.Count), "Generating")
	}
	limiter := rate.NewLimiter(rate.Every(2*time.Second), 1)

	yielded := 0
	for yielded < p.cfg.Count {
		var b *batch
		select {
		case b = <-order:
		case <-ctx.Done():
			return ctx.Err()
		}
		if b == nil {
			return fmt.Errorf("pipeline ended after %d of %d examples", yielded, p.cfg.Count)
		}

		select {
		case <-b.done:
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := sink.WriteBatch(b.out); err != nil {
			return fmt.Errorf("output sink failed at batch %d: %w", b.start, err)
		}
		yielded += len(b.items)
		p.stats.TotalExamples = yielded
		p.stats.BatchCount++
		p.collector.AddExamples(len(b.items))
		if bar != nil {
			_ = bar.Add(len(b.items))
		}
		if limiter.Allow() {
			p.logger.Debug("Progress", "yielded", yielded, "total", p.cfg.Count)
		}
	}
	return nil
}
