package experiment

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownTarget = errors.New("unknown target")

// TargetFunc maps one trial's inputs to the value every output should produce.
type TargetFunc func(inputs []float64) float64

const (
	TargetSum   = "sum"
	TargetMean  = "mean"
	TargetMax   = "max"
	TargetMin   = "min"
	TargetFirst = "first"
)

var targets = map[string]TargetFunc{
	TargetSum: sum,
	TargetMean: func(in []float64) float64 {
		if len(in) == 0 {
			return 0
		}
		return sum(in) / float64(len(in))
	},
	TargetMax: func(in []float64) float64 {
		return fold(in, func(a, b float64) bool { return b > a })
	},
	TargetMin: func(in []float64) float64 {
		return fold(in, func(a, b float64) bool { return b < a })
	},
	TargetFirst: func(in []float64) float64 {
		if len(in) == 0 {
			return 0
		}
		return in[0]
	},
}

func TargetByName(name string) (TargetFunc, error) {
	fn, ok := targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return fn, nil
}

func TargetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sum(in []float64) float64 {
	total := 0.0
	for _, v := range in {
		total += v
	}
	return total
}

func fold(in []float64, better func(best, v float64) bool) float64 {
	if len(in) == 0 {
		return 0
	}
	best := in[0]
	for _, v := range in[1:] {
		if better(best, v) {
			best = v
		}
	}
	return best
}
