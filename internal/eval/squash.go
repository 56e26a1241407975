package eval

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrSquashExists   = errors.New("squash already registered")
	ErrSquashNotFound = errors.New("squash not found")
)

// SquashFunc transforms a node's weighted sum before the threshold is applied.
type SquashFunc func(x float64) float64

const (
	SquashIdentity   = "identity"
	SquashTanh       = "tanh"
	SquashSigmoid    = "sigmoid"
	SquashSaturation = "saturation"
)

// SaturationLimit bounds the saturation squash to [-SaturationLimit, SaturationLimit].
const SaturationLimit = 1000.0

var squashRegistry = struct {
	mu sync.RWMutex
	m  map[string]SquashFunc
}{
	m: make(map[string]SquashFunc),
}

func init() {
	initializeBuiltInSquashes()
}

func initializeBuiltInSquashes() {
	MustRegisterSquash(SquashIdentity, func(x float64) float64 { return x })
	MustRegisterSquash(SquashTanh, math.Tanh)
	MustRegisterSquash(SquashSigmoid, func(x float64) float64 {
		return 1.0 / (1.0 + math.Exp(-x))
	})
	MustRegisterSquash(SquashSaturation, Saturate)
}

// Saturate clamps x to the symmetric saturation range.
func Saturate(x float64) float64 {
	if x > SaturationLimit {
		return SaturationLimit
	}
	if x < -SaturationLimit {
		return -SaturationLimit
	}
	return x
}

func RegisterSquash(name string, fn SquashFunc) error {
	if name == "" {
		return errors.New("squash name is required")
	}
	if fn == nil {
		return errors.New("squash function is required")
	}

	squashRegistry.mu.Lock()
	defer squashRegistry.mu.Unlock()

	if _, exists := squashRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrSquashExists, name)
	}
	squashRegistry.m[name] = fn
	return nil
}

func MustRegisterSquash(name string, fn SquashFunc) {
	if err := RegisterSquash(name, fn); err != nil {
		panic(err)
	}
}

func GetSquash(name string) (SquashFunc, error) {
	squashRegistry.mu.RLock()
	fn, ok := squashRegistry.m[name]
	squashRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSquashNotFound, name)
	}
	return fn, nil
}

func ListSquashes() []string {
	squashRegistry.mu.RLock()
	defer squashRegistry.mu.RUnlock()

	names := make([]string, 0, len(squashRegistry.m))
	for name := range squashRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetSquashRegistryForTests() {
	squashRegistry.mu.Lock()
	squashRegistry.m = make(map[string]SquashFunc)
	squashRegistry.mu.Unlock()
	initializeBuiltInSquashes()
}
