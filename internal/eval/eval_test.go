package eval

import (
	"errors"
	"math"
	"testing"

	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
)

func mustEvaluator(t *testing.T, policy Policy) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(policy)
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	return e
}

func TestThreeSourceSum(t *testing.T) {
	g := graph.New()
	k := g.AddSink(0)
	e := mustEvaluator(t, DefaultPolicy())
	for _, v := range []float64{2, -1, 4} {
		s := g.AddSource()
		g.Connect(s, k, 1)
		e.SetInput(g, s, v)
	}
	if got := e.Evaluate(g, k); got != 5 {
		t.Fatalf("unexpected output: got=%g want=5", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		a, t, want float64
	}{
		{a: -3, t: -2, want: -3},
		{a: -2, t: -2, want: -2},
		{a: 0, t: -2, want: -2},
		{a: 5, t: 0, want: 5},
		{a: 0, t: 0, want: 0},
		{a: -1, t: 0, want: 0},
		{a: 1, t: 1, want: 1},
		{a: 1.5, t: 1, want: 1.5},
	}
	for _, tc := range tests {
		if got := Clamp(tc.a, tc.t); got != tc.want {
			t.Fatalf("Clamp(%g, %g): got=%g want=%g", tc.a, tc.t, got, tc.want)
		}
	}
}

func TestEvaluateIsIdempotentAndResettable(t *testing.T) {
	g, in, out := chain(2, 1)
	e := mustEvaluator(t, DefaultPolicy())
	e.SetInput(g, in, 3)

	first := e.Evaluate(g, out)
	if second := e.Evaluate(g, out); second != first {
		t.Fatalf("evaluate not idempotent: got=%g want=%g", second, first)
	}
	if first != 6 {
		t.Fatalf("unexpected value: got=%g want=6", first)
	}

	e.Reset(g, out)
	for _, h := range g.Handles() {
		if g.Node(h).Evaluated() {
			t.Fatalf("node %d still evaluated after reset", h)
		}
	}
	if again := e.Evaluate(g, out); again != first {
		t.Fatalf("re-evaluation drifted: got=%g want=%g", again, first)
	}
}

func TestResetStopsAtClearedNodes(t *testing.T) {
	g, in, out := chain(1, 0)
	p := g.Growing()[0]
	e := mustEvaluator(t, DefaultPolicy())
	e.SetInput(g, in, 1)
	e.Evaluate(g, out)

	g.Node(p).Invalidate()
	e.Reset(g, out)
	if g.Node(out).Evaluated() {
		t.Fatal("expected out to be cleared")
	}
	if !g.Node(in).Evaluated() {
		t.Fatal("reset must not walk past an already cleared node")
	}

	e.Reset(g, out) // already clear
	e.ResetAll(g)
	if g.Node(in).Evaluated() {
		t.Fatal("expected ResetAll to clear every node")
	}
}

func TestSetInputInvalidatesDownstream(t *testing.T) {
	g, in, out := chain(1, 0)
	e := mustEvaluator(t, DefaultPolicy())
	e.SetInput(g, in, 2)
	if got := e.Evaluate(g, out); got != 2 {
		t.Fatalf("unexpected first value: got=%g want=2", got)
	}
	e.SetInput(g, in, 7)
	if got := e.Evaluate(g, out); got != 7 {
		t.Fatalf("stale value after SetInput: got=%g want=7", got)
	}
	if e.SetInput(g, out, 1) || e.SetInput(g, graph.Handle(99), 1) {
		t.Fatal("expected SetInput to reject non-source handles")
	}
}

func TestOffsetPolicy(t *testing.T) {
	g, in, out := chain(1, 3)
	e := mustEvaluator(t, Policy{Squash: SquashIdentity, Threshold: ThresholdOffset})
	e.SetInput(g, in, 5)
	// p: 5-3 = 2, out: 2-0 = 2
	if got := e.Evaluate(g, out); got != 2 {
		t.Fatalf("unexpected offset output: got=%g want=2", got)
	}
}

func TestSquashPolicy(t *testing.T) {
	g, in, out := chain(1, 0)
	e := mustEvaluator(t, Policy{Squash: SquashTanh})
	e.SetInput(g, in, 0.5)
	want := math.Tanh(math.Tanh(0.5))
	if got := e.Evaluate(g, out); math.Abs(got-want) > 1e-12 {
		t.Fatalf("unexpected tanh output: got=%g want=%g", got, want)
	}

	if got := Saturate(5000); got != SaturationLimit {
		t.Fatalf("unexpected saturation: got=%g", got)
	}
}

func TestEmptyAndUnknownNodes(t *testing.T) {
	g := graph.New()
	k := g.AddSink(-1)
	s := g.AddSource()
	e := mustEvaluator(t, DefaultPolicy())
	if got := e.Evaluate(g, k); got != -1 {
		t.Fatalf("sink without inputs: got=%g want=-1", got)
	}
	if got := e.Evaluate(g, s); got != 0 {
		t.Fatalf("unset source: got=%g want=0", got)
	}
	if got := e.Evaluate(g, graph.Handle(42)); got != 0 {
		t.Fatalf("unknown handle: got=%g want=0", got)
	}
	if got := e.Outputs(g); len(got) != 1 || got[0] != -1 {
		t.Fatalf("unexpected outputs: %v", got)
	}
}

func TestPolicyValidation(t *testing.T) {
	if _, err := NewEvaluator(Policy{Squash: "nope"}); !errors.Is(err, ErrSquashNotFound) {
		t.Fatalf("expected ErrSquashNotFound, got %v", err)
	}
	if _, err := NewEvaluator(Policy{Threshold: "sideways"}); !errors.Is(err, ErrUnknownThresholdMode) {
		t.Fatalf("expected ErrUnknownThresholdMode, got %v", err)
	}
	if err := (Policy{}).Validate(); err != nil {
		t.Fatalf("zero policy should be valid: %v", err)
	}
}

func TestSquashRegistry(t *testing.T) {
	t.Cleanup(resetSquashRegistryForTests)

	if err := RegisterSquash(SquashTanh, math.Tanh); !errors.Is(err, ErrSquashExists) {
		t.Fatalf("expected ErrSquashExists, got %v", err)
	}
	if err := RegisterSquash("", math.Tanh); err == nil {
		t.Fatal("expected empty name to be rejected")
	}
	if err := RegisterSquash("double", func(x float64) float64 { return 2 * x }); err != nil {
		t.Fatalf("register: %v", err)
	}
	fn, err := GetSquash("double")
	if err != nil || fn(2) != 4 {
		t.Fatalf("lookup failed: err=%v", err)
	}
	want := []string{"double", "identity", "saturation", "sigmoid", "tanh"}
	got := ListSquashes()
	if len(got) != len(want) {
		t.Fatalf("unexpected squash list: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected squash list: got=%v want=%v", got, want)
		}
	}
}

// chain wires in -(weight)-> p(threshold) -> out(threshold 0).
func chain(weight, threshold float64) (*graph.Graph, graph.Handle, graph.Handle) {
	g := graph.New()
	in := g.AddSource()
	p := g.AddGrowing(genome.End(), threshold)
	out := g.AddSink(0)
	g.Connect(in, p, weight)
	g.Connect(p, out, 1)
	return g, in, out
}
