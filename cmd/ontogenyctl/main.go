package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"ontogeny/internal/experiment"
	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/metrics"
	"ontogeny/pkg/ontogeny"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "genome":
		return runGenome(ctx, args[1:])
	case "grow":
		return runGrow(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	defaults := experiment.DefaultConfig()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional experiment config path (YAML or JSON)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", defaults.Seed, "rng seed")
	inputs := fs.Int("inputs", defaults.Inputs, "number of source nodes")
	outputs := fs.Int("outputs", defaults.Outputs, "number of sink nodes")
	trials := fs.Int("trials", defaults.Trials, "evaluation trials")
	inputMin := fs.Float64("input-min", defaults.InputMin, "lower bound of trial inputs")
	inputMax := fs.Float64("input-max", defaults.InputMax, "upper bound of trial inputs")
	integerInputs := fs.Bool("integer-inputs", defaults.IntegerInputs, "draw whole-number trial inputs")
	target := fs.String("target", defaults.Target, "target function: sum|mean|max|min|first")
	maxCycles := fs.Int("max-cycles", defaults.MaxCycles, "growth cycle limit (0 disables)")
	genomeText := fs.String("genome", defaults.Genome, "genome notation")
	random := fs.Bool("random", false, "draw a random genome instead of -genome")
	maxDepth := fs.Int("max-depth", defaults.Generator.MaxDepth, "random genome depth cutoff")
	maxSize := fs.Int("max-size", defaults.Generator.MaxSize, "random genome size cutoff")
	squash := fs.String("squash", defaults.Policy.Squash, "squash applied to weighted sums: identity|tanh|sigmoid|saturation")
	thresholdMode := fs.String("threshold-mode", string(defaults.Policy.Threshold), "threshold policy: clamp|offset")
	seedThreshold := fs.Float64("seed-threshold", defaults.SeedThreshold, "threshold of the seed growing node")
	trace := fs.Bool("trace", false, "print the graph after every growth cycle (to stderr with -json)")
	dump := fs.Bool("dump", false, "print the pruned graph")
	showMetrics := fs.Bool("metrics", false, "print collected metrics in Prometheus text format")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	verbose := fs.Bool("v", false, "log per-trial details to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg, err := loadOrDefaultConfig(*configPath)
	if err != nil {
		return err
	}
	err = overrideFromFlags(cfg, setFlags, map[string]any{
		"run-id":         *runID,
		"seed":           *seed,
		"inputs":         *inputs,
		"outputs":        *outputs,
		"trials":         *trials,
		"input-min":      *inputMin,
		"input-max":      *inputMax,
		"integer-inputs": *integerInputs,
		"target":         *target,
		"max-cycles":     *maxCycles,
		"genome":         *genomeText,
		"random":         *random,
		"max-depth":      *maxDepth,
		"max-size":       *maxSize,
		"squash":         *squash,
		"threshold-mode": *thresholdMode,
		"seed-threshold": *seedThreshold,
		"trace":          *trace,
	})
	if err != nil {
		return err
	}

	logger := newLogger(*verbose)
	// stdout carries only the report under -json.
	traceOut := stdout
	if *asJSON {
		traceOut = stderr
	}
	opts := experiment.Options{Trace: traceOut}
	var reg *prometheus.Registry
	if *showMetrics {
		reg = prometheus.NewRegistry()
		m := metrics.New(reg)
		opts.Observer = m
		opts.Trials = m
	}

	logger.Debug("starting run", "config", *configPath, "genome", cfg.Genome, "seed", cfg.Seed)
	report, err := experiment.Run(ctx, cfg, opts)
	if err != nil {
		return err
	}
	for i, trial := range report.Trials {
		logger.Debug("trial", "index", i, "inputs", trial.Inputs, "outputs", trial.Outputs, "target", trial.Target, "squared_error", trial.SquaredError)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		fmt.Fprintf(stdout, "run completed run_id=%s genome=%s\n", report.RunID, report.Genome)
		fmt.Fprintf(stdout, "growth cycles=%d executed=%d spawned=%d population=%d pruned=%d nodes=%d edges=%d\n",
			report.Cycles, report.Executed, report.Spawned, report.Population, report.Pruned, report.Nodes, report.Edges)
		fmt.Fprintf(stdout, "score trials=%d mse=%.6f fitness=%.6f\n", len(report.Trials), report.MSE, report.Fitness)
	}
	if *dump {
		fmt.Fprint(stdout, graph.Format(report.Graph))
	}
	if reg != nil {
		if err := metrics.WriteText(stdout, reg); err != nil {
			return err
		}
	}
	return nil
}

func runGenome(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("genome", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("parse", "", "genome notation to validate and normalize")
	random := fs.Bool("random", false, "draw a random genome")
	seed := fs.Int64("seed", 1, "rng seed for -random")
	maxDepth := fs.Int("max-depth", genome.DefaultMaxDepth, "random genome depth cutoff")
	maxSize := fs.Int("max-size", genome.DefaultMaxSize, "random genome size cutoff")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		out string
		err error
	)
	switch {
	case *text != "" && *random:
		return fmt.Errorf("-parse and -random are mutually exclusive")
	case *text != "":
		out, err = ontogeny.ParseGenome(*text)
	case *random:
		out, err = ontogeny.GenerateGenome(*seed, *maxDepth, *maxSize)
	default:
		out = ontogeny.ReferenceGenome()
	}
	if err != nil {
		return err
	}
	stats, err := ontogeny.DescribeGenome(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "genome = %s\n", out)
	fmt.Fprintf(stdout, "size=%d depth=%d branches=%d path=%d\n", stats.Size, stats.Depth, stats.Branches, stats.PathLength)
	return nil
}

func runGrow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("genome", ontogeny.ReferenceGenome(), "genome notation")
	inputs := fs.Int("inputs", 3, "number of source nodes")
	outputs := fs.Int("outputs", 2, "number of sink nodes")
	maxCycles := fs.Int("max-cycles", 1000, "growth cycle limit (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	initial, steps, err := ontogeny.Replay(ctx, *text, *inputs, *outputs, *maxCycles)
	if initial != "" {
		fmt.Fprintf(stdout, "genome = %s\n%s", *text, initial)
	}
	for _, step := range steps {
		fmt.Fprintf(stdout, "# %d executed=%d spawned=%d population=%d pending=%d ------------------------\n%s",
			step.Stats.Cycle, step.Stats.Executed, step.Stats.Spawned, step.Stats.Population, step.Stats.Pending, step.Dump)
	}
	return err
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: ontogenyctl <run|genome|grow> [flags]", msg)
}
