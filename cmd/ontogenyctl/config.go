package main

import (
	"ontogeny/internal/eval"
	"ontogeny/internal/experiment"
)

func loadOrDefaultConfig(path string) (*experiment.Config, error) {
	if path == "" {
		return experiment.DefaultConfig(), nil
	}
	return experiment.LoadConfig(path)
}

// overrideFromFlags applies only the flags the user actually set, so a config
// file keeps its values for everything else.
func overrideFromFlags(cfg *experiment.Config, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			cfg.RunID = v.(string)
		case "seed":
			cfg.Seed = v.(int64)
		case "inputs":
			cfg.Inputs = v.(int)
		case "outputs":
			cfg.Outputs = v.(int)
		case "trials":
			cfg.Trials = v.(int)
		case "input-min":
			cfg.InputMin = v.(float64)
		case "input-max":
			cfg.InputMax = v.(float64)
		case "integer-inputs":
			cfg.IntegerInputs = v.(bool)
		case "target":
			cfg.Target = v.(string)
		case "max-cycles":
			cfg.MaxCycles = v.(int)
		case "genome":
			cfg.Genome = v.(string)
		case "max-depth":
			cfg.Generator.MaxDepth = v.(int)
		case "max-size":
			cfg.Generator.MaxSize = v.(int)
		case "squash":
			cfg.Policy.Squash = v.(string)
		case "threshold-mode":
			cfg.Policy.Threshold = eval.ThresholdMode(v.(string))
		case "seed-threshold":
			cfg.SeedThreshold = v.(float64)
		case "trace":
			cfg.Trace = v.(bool)
		}
	}
	// -random wins over any genome from the file or -genome.
	if set["random"] && flagValue["random"].(bool) {
		cfg.Genome = ""
	}
	return cfg.Validate()
}
