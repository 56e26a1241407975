package ontogeny

import (
	"context"
	"io"
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"

	"ontogeny/internal/eval"
	"ontogeny/internal/experiment"
	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/growth"
	"ontogeny/internal/metrics"
)

const (
	defaultInputs  = 3
	defaultOutputs = 2
	defaultTrials  = 10
)

type Options struct {
	// Registerer receives growth and trial collectors. Nil disables metrics.
	Registerer prometheus.Registerer
	// Trace, when set, receives a graph dump after every growth cycle.
	Trace io.Writer
}

type Client struct {
	metrics *metrics.Metrics
	trace   io.Writer
}

type RunRequest struct {
	RunID         string
	Seed          int64
	Inputs        int
	Outputs       int
	Trials        int
	InputMin      float64
	InputMax      float64
	IntegerInputs bool
	Target        string
	MaxCycles     int
	// Genome in notation form. Empty runs the reference genome unless
	// Generate is set.
	Genome        string
	Generate      bool
	MaxDepth      int
	MaxSize       int
	Squash        string
	ThresholdMode string
	SeedThreshold float64
}

type TrialSummary struct {
	Inputs       []float64
	Outputs      []float64
	Target       float64
	SquaredError float64
}

type RunSummary struct {
	RunID      string
	Genome     string
	Cycles     int
	Spawned    int
	Population int
	Pruned     int
	Nodes      int
	Edges      int
	Trials     []TrialSummary
	MSE        float64
	Fitness    float64
	// Dump is the textual form of the pruned graph.
	Dump string
}

func New(opts Options) *Client {
	c := &Client{trace: opts.Trace}
	if opts.Registerer != nil {
		c.metrics = metrics.New(opts.Registerer)
	}
	return c
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	cfg := experiment.DefaultConfig()
	cfg.RunID = req.RunID
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	cfg.Inputs = defaultInputs
	if req.Inputs > 0 {
		cfg.Inputs = req.Inputs
	}
	cfg.Outputs = defaultOutputs
	if req.Outputs > 0 {
		cfg.Outputs = req.Outputs
	}
	cfg.Trials = defaultTrials
	if req.Trials > 0 {
		cfg.Trials = req.Trials
	}
	if req.InputMin != 0 || req.InputMax != 0 {
		cfg.InputMin, cfg.InputMax = req.InputMin, req.InputMax
	}
	cfg.IntegerInputs = req.IntegerInputs
	if req.Target != "" {
		cfg.Target = req.Target
	}
	if req.MaxCycles > 0 {
		cfg.MaxCycles = req.MaxCycles
	}
	switch {
	case req.Genome != "":
		cfg.Genome = req.Genome
	case req.Generate:
		cfg.Genome = ""
	}
	if req.MaxDepth > 0 {
		cfg.Generator.MaxDepth = req.MaxDepth
	}
	if req.MaxSize > 0 {
		cfg.Generator.MaxSize = req.MaxSize
	}
	if req.Squash != "" {
		cfg.Policy.Squash = req.Squash
	}
	if req.ThresholdMode != "" {
		cfg.Policy.Threshold = eval.ThresholdMode(req.ThresholdMode)
	}
	cfg.SeedThreshold = req.SeedThreshold
	cfg.Trace = c.trace != nil

	opts := experiment.Options{Trace: c.trace}
	if c.metrics != nil {
		opts.Observer = c.metrics
		opts.Trials = c.metrics
	}
	report, err := experiment.Run(ctx, cfg, opts)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:      report.RunID,
		Genome:     report.Genome,
		Cycles:     report.Cycles,
		Spawned:    report.Spawned,
		Population: report.Population,
		Pruned:     report.Pruned,
		Nodes:      report.Nodes,
		Edges:      report.Edges,
		MSE:        report.MSE,
		Fitness:    report.Fitness,
		Dump:       graph.Format(report.Graph),
	}
	for _, trial := range report.Trials {
		summary.Trials = append(summary.Trials, TrialSummary(trial))
	}
	return summary, nil
}

// ParseGenome validates notation and returns it in canonical form.
func ParseGenome(text string) (string, error) {
	root, err := genome.Parse(text)
	if err != nil {
		return "", err
	}
	return genome.Format(root), nil
}

// ReferenceGenome returns the classic demo genome in notation form.
func ReferenceGenome() string {
	return genome.Format(genome.Reference())
}

// GenerateGenome draws a random genome with the default opcode weights.
// Non-positive limits fall back to the generator defaults.
func GenerateGenome(seed int64, maxDepth, maxSize int) (string, error) {
	gen := genome.NewGenerator()
	if maxDepth > 0 {
		gen.MaxDepth = maxDepth
	}
	if maxSize > 0 {
		gen.MaxSize = maxSize
	}
	if err := gen.Validate(); err != nil {
		return "", err
	}
	return genome.Format(gen.Generate(rand.New(rand.NewSource(seed)))), nil
}

// GenomeStats describes the shape of a genome.
type GenomeStats struct {
	Size       int
	Depth      int
	Branches   int
	PathLength int
}

func DescribeGenome(text string) (GenomeStats, error) {
	root, err := genome.Parse(text)
	if err != nil {
		return GenomeStats{}, err
	}
	return GenomeStats{
		Size:       root.Size(),
		Depth:      root.Depth(),
		Branches:   root.Count(genome.OpSer) + root.Count(genome.OpPar),
		PathLength: root.PathLength(),
	}, nil
}

// GrowthStep is one cycle of a replayed growth run.
type GrowthStep struct {
	Stats growth.CycleStats
	Dump  string
}

// Replay grows text on the standard layout and returns the seeded dump plus
// one step per cycle.
func Replay(ctx context.Context, text string, inputs, outputs, maxCycles int) (string, []GrowthStep, error) {
	root, err := genome.Parse(text)
	if err != nil {
		return "", nil, err
	}
	if inputs <= 0 {
		inputs = defaultInputs
	}
	if outputs <= 0 {
		outputs = defaultOutputs
	}
	g, _ := experiment.Seed(root, inputs, outputs, 0)
	initial := graph.Format(g)

	rec := &stepRecorder{}
	_, err = growth.NewEngine(g, growth.Config{MaxCycles: maxCycles, Observer: rec}).Run(ctx)
	return initial, rec.steps, err
}

type stepRecorder struct {
	steps []GrowthStep
}

func (r *stepRecorder) Executed(graph.Handle, genome.Kind) {}

func (r *stepRecorder) Spawned(graph.Handle, graph.Handle, genome.Kind) {}

func (r *stepRecorder) CycleDone(g *graph.Graph, stats growth.CycleStats) {
	r.steps = append(r.steps, GrowthStep{Stats: stats, Dump: graph.Format(g)})
}
