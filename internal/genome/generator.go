package genome

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	DefaultMaxDepth = 12
	DefaultMaxSize  = 64
)

// Generator builds random growth programs. Opcodes are drawn with the given
// relative weights; an End is forced once the depth or size cutoff would be
// exceeded, so every generated tree is finite.
type Generator struct {
	Weights  map[Kind]float64
	MaxDepth int
	MaxSize  int
}

// DefaultWeights biases towards short programs that still exercise every opcode.
func DefaultWeights() map[Kind]float64 {
	w := make(map[Kind]float64, numKinds)
	for _, k := range Kinds() {
		w[k] = 1
	}
	w[OpSer] = 1.5
	w[OpPar] = 1.5
	w[OpWait] = 0.5
	w[OpEnd] = 3
	return w
}

func NewGenerator() Generator {
	return Generator{
		Weights:  DefaultWeights(),
		MaxDepth: DefaultMaxDepth,
		MaxSize:  DefaultMaxSize,
	}
}

func (g Generator) Validate() error {
	if g.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be > 0")
	}
	if g.MaxSize <= 0 {
		return fmt.Errorf("max size must be > 0")
	}
	total := 0.0
	for k, w := range g.Weights {
		if !k.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownKind, k)
		}
		if w < 0 {
			return fmt.Errorf("weight for %s must be >= 0, got %g", k, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("at least one opcode weight must be > 0")
	}
	return nil
}

// Generate draws one tree. A nil rng falls back to a time-seeded source.
func (g Generator) Generate(rng *rand.Rand) *Node {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b := &builder{gen: g, rng: rng}
	return b.build(1, 0)
}

type builder struct {
	gen     Generator
	rng     *rand.Rand
	emitted int
}

// build fills one slot at the given depth. pending is the number of slots
// already promised elsewhere that still need at least one node each.
func (b *builder) build(depth, pending int) *Node {
	remaining := b.gen.MaxSize - b.emitted - pending
	kind := b.pick(depth, remaining)
	b.emitted++

	switch {
	case kind == OpEnd:
		return End()
	case kind.IsBranch():
		next := b.build(depth+1, pending+1)
		sibling := b.build(depth+1, pending)
		return New(kind, next, sibling)
	default:
		return New(kind, b.build(depth+1, pending), nil)
	}
}

func (b *builder) pick(depth, remaining int) Kind {
	if depth >= b.gen.MaxDepth || remaining < 2 {
		return OpEnd
	}

	candidates := make([]Kind, 0, numKinds)
	total := 0.0
	for _, k := range Kinds() {
		w := b.gen.Weights[k]
		if w <= 0 {
			continue
		}
		if k.IsBranch() && remaining < 3 {
			continue
		}
		candidates = append(candidates, k)
		total += w
	}
	if total <= 0 {
		return OpEnd
	}

	r := b.rng.Float64() * total
	for _, k := range candidates {
		r -= b.gen.Weights[k]
		if r < 0 {
			return k
		}
	}
	return candidates[len(candidates)-1]
}
