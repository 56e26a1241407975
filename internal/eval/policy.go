package eval

import (
	"errors"
	"fmt"
)

var ErrUnknownThresholdMode = errors.New("unknown threshold mode")

// ThresholdMode selects how a sink's threshold shapes its squashed aggregate.
type ThresholdMode string

const (
	// ThresholdClamp keeps the aggregate only when it lies beyond the
	// threshold, measured away from zero; otherwise the threshold wins.
	ThresholdClamp ThresholdMode = "clamp"
	// ThresholdOffset subtracts the threshold from the aggregate.
	ThresholdOffset ThresholdMode = "offset"
)

// Policy is the aggregation and threshold formula applied by every sink.
// The zero value is identity squash with clamp thresholds.
type Policy struct {
	Squash    string        `yaml:"squash" json:"squash"`
	Threshold ThresholdMode `yaml:"threshold_mode" json:"threshold_mode"`
}

func DefaultPolicy() Policy {
	return Policy{Squash: SquashIdentity, Threshold: ThresholdClamp}
}

func (p Policy) Validate() error {
	if _, err := p.squash(); err != nil {
		return err
	}
	switch p.Threshold {
	case "", ThresholdClamp, ThresholdOffset:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownThresholdMode, p.Threshold)
	}
}

func (p Policy) squash() (SquashFunc, error) {
	name := p.Squash
	if name == "" {
		name = SquashIdentity
	}
	return GetSquash(name)
}

func (p Policy) apply(sum, threshold float64, squash SquashFunc) float64 {
	v := squash(sum)
	if p.Threshold == ThresholdOffset {
		return v - threshold
	}
	return Clamp(v, threshold)
}

// Clamp is the asymmetric threshold: for t < 0 it yields a when a < t,
// for t >= 0 it yields a when a > t, and t otherwise.
func Clamp(a, t float64) float64 {
	if t < 0 {
		if a < t {
			return a
		}
		return t
	}
	if t < a {
		return a
	}
	return t
}
