package experiment

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"ontogeny/internal/eval"
	"ontogeny/internal/genome"
)

var ErrInvalidConfig = errors.New("invalid experiment config")

// Config describes one grow-then-evaluate experiment.
type Config struct {
	RunID string `yaml:"run_id"`
	Seed  int64  `yaml:"seed"`

	Inputs  int `yaml:"inputs"`
	Outputs int `yaml:"outputs"`

	Trials        int     `yaml:"trials"`
	InputMin      float64 `yaml:"input_min"`
	InputMax      float64 `yaml:"input_max"`
	IntegerInputs bool    `yaml:"integer_inputs"`
	Target        string  `yaml:"target"`

	// MaxCycles bounds growth; 0 disables the bound.
	MaxCycles int `yaml:"max_cycles"`

	// Genome in notation form. Empty means draw one from Generator.
	Genome        string          `yaml:"genome"`
	Generator     GeneratorConfig `yaml:"generator"`
	Policy        eval.Policy     `yaml:"policy"`
	SeedThreshold float64         `yaml:"seed_threshold"`

	// Trace prints the graph after every growth cycle.
	Trace bool `yaml:"trace"`
}

type GeneratorConfig struct {
	MaxDepth int                `yaml:"max_depth"`
	MaxSize  int                `yaml:"max_size"`
	Weights  map[string]float64 `yaml:"weights"`
}

// DefaultConfig wires the classic layout: three inputs, two outputs, the
// reference genome.
func DefaultConfig() *Config {
	return &Config{
		Seed:      1,
		Inputs:    3,
		Outputs:   2,
		Trials:    10,
		InputMin:  -10,
		InputMax:  10,
		Target:    TargetSum,
		MaxCycles: 1000,
		Genome:    genome.Format(genome.Reference()),
		Generator: GeneratorConfig{
			MaxDepth: genome.DefaultMaxDepth,
			MaxSize:  genome.DefaultMaxSize,
		},
		Policy: eval.DefaultPolicy(),
	}
}

// LoadConfig reads a YAML (or JSON) file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Inputs < 1 {
		return fmt.Errorf("%w: inputs must be positive, got %d", ErrInvalidConfig, c.Inputs)
	}
	if c.Outputs < 1 {
		return fmt.Errorf("%w: outputs must be positive, got %d", ErrInvalidConfig, c.Outputs)
	}
	if c.Trials < 0 {
		return fmt.Errorf("%w: trials must be non-negative, got %d", ErrInvalidConfig, c.Trials)
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("%w: max_cycles must be non-negative, got %d", ErrInvalidConfig, c.MaxCycles)
	}
	if !finite(c.InputMin) || !finite(c.InputMax) {
		return fmt.Errorf("%w: input bounds must be finite, got [%g, %g]", ErrInvalidConfig, c.InputMin, c.InputMax)
	}
	if c.InputMin > c.InputMax {
		return fmt.Errorf("%w: input_min %g exceeds input_max %g", ErrInvalidConfig, c.InputMin, c.InputMax)
	}
	if !finite(c.InputMax - c.InputMin) {
		return fmt.Errorf("%w: input range [%g, %g] overflows", ErrInvalidConfig, c.InputMin, c.InputMax)
	}
	if c.IntegerInputs && math.Floor(c.InputMax)-math.Ceil(c.InputMin) >= maxIntegerSpan {
		return fmt.Errorf("%w: integer input range [%g, %g] is too wide", ErrInvalidConfig, c.InputMin, c.InputMax)
	}
	if !finite(c.SeedThreshold) {
		return fmt.Errorf("%w: seed_threshold must be finite, got %g", ErrInvalidConfig, c.SeedThreshold)
	}
	if _, err := TargetByName(c.Target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: policy: %w", ErrInvalidConfig, err)
	}
	if c.Genome != "" {
		if _, err := genome.Parse(c.Genome); err != nil {
			return fmt.Errorf("%w: genome: %w", ErrInvalidConfig, err)
		}
		return nil
	}
	if _, err := c.Generator.build(); err != nil {
		return fmt.Errorf("%w: generator: %w", ErrInvalidConfig, err)
	}
	return nil
}

// maxIntegerSpan is the widest whole-number input range a trial can draw from.
const maxIntegerSpan = float64(math.MaxInt64)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// build converts the named weights into a genome.Generator. Opcodes missing
// from Weights keep their default weight.
func (c GeneratorConfig) build() (genome.Generator, error) {
	gen := genome.NewGenerator()
	if c.MaxDepth != 0 {
		gen.MaxDepth = c.MaxDepth
	}
	if c.MaxSize != 0 {
		gen.MaxSize = c.MaxSize
	}
	for name, w := range c.Weights {
		kind, ok := genome.KindByName(name)
		if !ok {
			return genome.Generator{}, fmt.Errorf("%w: %s", genome.ErrUnknownKind, name)
		}
		gen.Weights[kind] = w
	}
	if err := gen.Validate(); err != nil {
		return genome.Generator{}, err
	}
	return gen, nil
}
