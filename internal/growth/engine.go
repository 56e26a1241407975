package growth

import (
	"context"
	"errors"
	"fmt"

	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
)

var ErrCycleLimit = errors.New("growth cycle limit reached")

// CycleStats describes one completed growth cycle.
type CycleStats struct {
	Cycle      int
	Executed   int
	Spawned    int
	Population int
	Pending    int
}

// Observer receives growth events. Implementations must not mutate the graph.
type Observer interface {
	Executed(h graph.Handle, kind genome.Kind)
	Spawned(parent, child graph.Handle, kind genome.Kind)
	CycleDone(g *graph.Graph, stats CycleStats)
}

type Config struct {
	// MaxCycles stops Run with ErrCycleLimit; <= 0 disables the limit.
	MaxCycles int
	Observer  Observer
}

// Result summarizes a growth pass.
type Result struct {
	Cycles     int
	Executed   int
	Spawned    int
	Population int
}

// Engine drives every growing node of a graph one instruction per cycle.
type Engine struct {
	graph    *graph.Graph
	cfg      Config
	observer Observer
	result   Result
}

// NewEngine prepares an engine over g. A nil cfg.Observer discards events.
func NewEngine(g *graph.Graph, cfg Config) *Engine {
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{graph: g, cfg: cfg, observer: observer}
}

// Cycle runs one growth round over the population as it stood when the round
// began; offspring created during the round first grow in the next one. It
// reports whether the fixpoint was reached: every node done and no new node
// created during the round.
func (e *Engine) Cycle() (CycleStats, bool) {
	snapshot := e.graph.Growing()
	e.result.Cycles++
	stats := CycleStats{Cycle: e.result.Cycles}

	for _, h := range snapshot {
		n := e.graph.Node(h)
		if n == nil || n.Done() {
			continue
		}
		kind, child, ok := step(e.graph, h)
		if !ok {
			continue
		}
		stats.Executed++
		e.observer.Executed(h, kind)
		if child != graph.NoHandle {
			stats.Spawned++
			e.observer.Spawned(h, child, kind)
		}
	}

	population := e.graph.Growing()
	stats.Population = len(population)
	for _, h := range population {
		if !e.graph.Node(h).Done() {
			stats.Pending++
		}
	}
	e.result.Executed += stats.Executed
	e.result.Spawned += stats.Spawned
	e.result.Population = stats.Population
	e.observer.CycleDone(e.graph, stats)

	return stats, stats.Pending == 0 && stats.Population == len(snapshot)
}

// Run repeats Cycle until the fixpoint. Cancellation is checked between cycles.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return e.result, err
		}
		if e.cfg.MaxCycles > 0 && e.result.Cycles >= e.cfg.MaxCycles {
			return e.result, fmt.Errorf("%w: %d", ErrCycleLimit, e.cfg.MaxCycles)
		}
		if _, done := e.Cycle(); done {
			return e.result, nil
		}
	}
}

func (e *Engine) Result() Result {
	return e.result
}

type nopObserver struct{}

func (nopObserver) Executed(graph.Handle, genome.Kind) {}

func (nopObserver) Spawned(graph.Handle, graph.Handle, genome.Kind) {}

func (nopObserver) CycleDone(*graph.Graph, CycleStats) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) Executed(h graph.Handle, kind genome.Kind) {
	for _, obs := range o {
		obs.Executed(h, kind)
	}
}

func (o Observers) Spawned(parent, child graph.Handle, kind genome.Kind) {
	for _, obs := range o {
		obs.Spawned(parent, child, kind)
	}
}

func (o Observers) CycleDone(g *graph.Graph, stats CycleStats) {
	for _, obs := range o {
		obs.CycleDone(g, stats)
	}
}
