package experiment

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"ontogeny/internal/eval"
	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/growth"
)

// TrialObserver receives the squared error of every evaluation trial.
type TrialObserver interface {
	ObserveTrial(squaredError float64)
}

type Options struct {
	// Trace receives the seeded graph and a dump after every growth cycle
	// when Config.Trace is set.
	Trace    io.Writer
	Observer growth.Observer
	Trials   TrialObserver
}

type Trial struct {
	Inputs       []float64 `json:"inputs"`
	Outputs      []float64 `json:"outputs"`
	Target       float64   `json:"target"`
	SquaredError float64   `json:"squared_error"`
}

type Report struct {
	RunID      string  `json:"run_id"`
	Genome     string  `json:"genome"`
	Cycles     int     `json:"cycles"`
	Executed   int     `json:"executed"`
	Spawned    int     `json:"spawned"`
	Population int     `json:"population"`
	Pruned     int     `json:"pruned"`
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	Trials     []Trial `json:"trials"`
	MSE        float64 `json:"mse"`
	Fitness    float64 `json:"fitness"`

	// Graph is the pruned graph the trials were evaluated on.
	Graph *graph.Graph `json:"-"`
}

// Layout is the caller-owned part of a seeded graph.
type Layout struct {
	Sources []graph.Handle
	Sinks   []graph.Handle
	Seed    graph.Handle
}

// Seed builds sinks, then sources, then one growing node fed by every source
// and feeding every sink, all edges at the default weight.
func Seed(root *genome.Node, inputs, outputs int, threshold float64) (*graph.Graph, Layout) {
	g := graph.New()
	var layout Layout
	for i := 0; i < outputs; i++ {
		layout.Sinks = append(layout.Sinks, g.AddSink(0))
	}
	for i := 0; i < inputs; i++ {
		layout.Sources = append(layout.Sources, g.AddSource())
	}
	layout.Seed = g.AddGrowing(root, threshold)
	for _, k := range layout.Sinks {
		g.Connect(layout.Seed, k, graph.DefaultWeight)
	}
	for _, s := range layout.Sources {
		g.Connect(s, layout.Seed, graph.DefaultWeight)
	}
	return g, layout
}

// Run grows the configured genome to its fixpoint, prunes the result and
// scores it over random trials.
func Run(ctx context.Context, cfg *Config, opts Options) (Report, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	target, err := TargetByName(cfg.Target)
	if err != nil {
		return Report{}, err
	}
	evaluator, err := eval.NewEvaluator(cfg.Policy)
	if err != nil {
		return Report{}, err
	}

	report := Report{RunID: cfg.RunID}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	root, err := buildGenome(cfg, rng)
	if err != nil {
		return report, err
	}
	report.Genome = genome.Format(root)

	g, layout := Seed(root, cfg.Inputs, cfg.Outputs, cfg.SeedThreshold)
	report.Graph = g

	observers := growth.Observers{}
	if opts.Observer != nil {
		observers = append(observers, opts.Observer)
	}
	var tr *tracer
	if cfg.Trace && opts.Trace != nil {
		tr = newTracer(opts.Trace, g)
		observers = append(observers, tr)
	}

	result, err := growth.NewEngine(g, growth.Config{
		MaxCycles: cfg.MaxCycles,
		Observer:  observers,
	}).Run(ctx)
	report.Cycles = result.Cycles
	report.Executed = result.Executed
	report.Spawned = result.Spawned
	report.Population = result.Population
	if err != nil {
		return report, fmt.Errorf("grow %s: %w", report.RunID, err)
	}
	if tr != nil && tr.err != nil {
		return report, fmt.Errorf("write trace: %w", tr.err)
	}

	pinned := append(append([]graph.Handle(nil), layout.Sources...), layout.Sinks...)
	report.Pruned = g.Prune(pinned...)
	report.Nodes = g.Len()
	report.Edges = g.EdgeCount()

	squared := 0.0
	for i := 0; i < cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		trial := runTrial(g, layout, evaluator, target, cfg, rng)
		if opts.Trials != nil {
			opts.Trials.ObserveTrial(trial.SquaredError)
		}
		squared += trial.SquaredError
		report.Trials = append(report.Trials, trial)
	}
	if cfg.Trials > 0 {
		report.MSE = squared / float64(cfg.Trials)
	}
	report.Fitness = 1 / (1 + report.MSE)
	return report, nil
}

func buildGenome(cfg *Config, rng *rand.Rand) (*genome.Node, error) {
	if cfg.Genome != "" {
		root, err := genome.Parse(cfg.Genome)
		if err != nil {
			return nil, fmt.Errorf("parse genome: %w", err)
		}
		return root, nil
	}
	gen, err := cfg.Generator.build()
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return gen.Generate(rng), nil
}

// runTrial resets every cached value, assigns fresh inputs and compares each
// output with the target. The squared error is averaged over outputs.
func runTrial(g *graph.Graph, layout Layout, ev *eval.Evaluator, target TargetFunc, cfg *Config, rng *rand.Rand) Trial {
	ev.ResetAll(g)
	trial := Trial{
		Inputs:  make([]float64, len(layout.Sources)),
		Outputs: make([]float64, len(layout.Sinks)),
	}
	for i, h := range layout.Sources {
		trial.Inputs[i] = drawInput(cfg, rng)
		ev.SetInput(g, h, trial.Inputs[i])
	}
	trial.Target = target(trial.Inputs)
	for i, h := range layout.Sinks {
		trial.Outputs[i] = ev.Evaluate(g, h)
		delta := trial.Outputs[i] - trial.Target
		trial.SquaredError += delta * delta
	}
	if len(layout.Sinks) > 0 {
		trial.SquaredError /= float64(len(layout.Sinks))
	}
	return trial
}

func drawInput(cfg *Config, rng *rand.Rand) float64 {
	if !cfg.IntegerInputs {
		return cfg.InputMin + rng.Float64()*(cfg.InputMax-cfg.InputMin)
	}
	lo, hi := math.Ceil(cfg.InputMin), math.Floor(cfg.InputMax)
	if !(hi > lo) {
		return lo
	}
	if hi-lo >= maxIntegerSpan {
		return math.Floor(lo + rng.Float64()*(hi-lo))
	}
	return lo + float64(rng.Int63n(int64(hi-lo)+1))
}
