package graph

import (
	"strings"
	"testing"

	"ontogeny/internal/genome"
)

func TestResolveWrapsIntoRange(t *testing.T) {
	tests := []struct {
		cursor, length, want int
	}{
		{cursor: 0, length: 3, want: 0},
		{cursor: 4, length: 3, want: 1},
		{cursor: -1, length: 3, want: 2},
		{cursor: -3, length: 3, want: 0},
		{cursor: -7, length: 3, want: 2},
		{cursor: 5, length: 1, want: 0},
		{cursor: 5, length: 0, want: 0},
		{cursor: -5, length: 0, want: 0},
	}
	for _, tc := range tests {
		if got := Resolve(tc.cursor, tc.length); got != tc.want {
			t.Fatalf("Resolve(%d, %d): got=%d want=%d", tc.cursor, tc.length, got, tc.want)
		}
	}
	for length := 1; length <= 7; length++ {
		for cursor := -50; cursor <= 50; cursor++ {
			got := Resolve(cursor, length)
			if got < 0 || got >= length {
				t.Fatalf("Resolve(%d, %d) out of range: %d", cursor, length, got)
			}
		}
	}
}

func TestRolesAndViews(t *testing.T) {
	g := New()
	src := g.AddSource()
	dst := g.AddSink(0.5)
	p := g.AddGrowing(genome.End(), 2)

	if _, ok := g.Sink(src); ok {
		t.Fatal("pure source must not expose a sink view")
	}
	if _, ok := g.Source(dst); ok {
		t.Fatal("pure sink must not expose a source view")
	}
	sink, ok := g.Sink(p)
	if !ok || sink.Threshold() != 2 {
		t.Fatalf("growing node sink view mismatch: ok=%t", ok)
	}
	if _, ok := g.Source(p); !ok {
		t.Fatal("growing node must expose a source view")
	}
	if got := g.Sources(); len(got) != 1 || got[0] != src {
		t.Fatalf("unexpected sources: %v", got)
	}
	if got := g.Sinks(); len(got) != 1 || got[0] != dst {
		t.Fatalf("unexpected sinks: %v", got)
	}
	if got := g.Growing(); len(got) != 1 || got[0] != p {
		t.Fatalf("unexpected growing nodes: %v", got)
	}
	if g.Node(Handle(99)) != nil || g.Node(NoHandle) != nil {
		t.Fatal("expected unknown handles to resolve to nil")
	}
}

func TestConnectRequiresRoles(t *testing.T) {
	g := New()
	src := g.AddSource()
	dst := g.AddSink(0)
	if g.Connect(dst, src, 1) {
		t.Fatal("expected sink->source connect to be rejected")
	}
	if !g.Connect(src, dst, 3) {
		t.Fatal("expected source->sink connect to succeed")
	}
	if got := g.Node(dst).Inputs(); len(got) != 1 || got[0] != (Edge{From: src, Weight: 3}) {
		t.Fatalf("unexpected inputs: %+v", got)
	}
	if got := g.Node(src).Outputs(); len(got) != 1 || got[0] != dst {
		t.Fatalf("unexpected outputs: %+v", got)
	}
	assertSymmetric(t, g)
}

func TestCutInputUsesCursorAndSwapsLast(t *testing.T) {
	g := New()
	a, b, c := g.AddSource(), g.AddSource(), g.AddSource()
	k := g.AddGrowing(genome.End(), 0)
	g.Connect(a, k, 1)
	g.Connect(b, k, 2)
	g.Connect(c, k, 3)

	g.Node(k).MoveInputCursor(-2) // resolves to index 1
	if !g.CutInput(k) {
		t.Fatal("expected cut to succeed")
	}
	want := []Edge{{From: a, Weight: 1}, {From: c, Weight: 3}}
	got := g.Node(k).Inputs()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected inputs after cut: got=%+v want=%+v", got, want)
	}
	if len(g.Node(b).Outputs()) != 0 {
		t.Fatalf("expected reciprocal link removed: %+v", g.Node(b).Outputs())
	}
	assertSymmetric(t, g)
}

func TestCutOutputUsesCursor(t *testing.T) {
	g := New()
	p := g.AddGrowing(genome.End(), 0)
	x, y := g.AddSink(0), g.AddSink(0)
	g.Connect(p, x, 1)
	g.Connect(p, y, 1)

	g.Node(p).MoveOutputCursor(3) // resolves to index 1
	if !g.CutOutput(p) {
		t.Fatal("expected cut to succeed")
	}
	if got := g.Node(p).Outputs(); len(got) != 1 || got[0] != x {
		t.Fatalf("unexpected outputs: %+v", got)
	}
	if len(g.Node(y).Inputs()) != 0 {
		t.Fatal("expected sink y to lose its input")
	}
	assertSymmetric(t, g)
}

func TestCursorOperationsOnEmptyListsAreNoOps(t *testing.T) {
	g := New()
	p := g.AddGrowing(genome.End(), 0)
	g.Node(p).MoveInputCursor(-4)
	g.Node(p).MoveOutputCursor(9)
	if g.CutInput(p) || g.CutOutput(p) || g.AddWeight(p, 1) || g.ScaleWeight(p, 2) {
		t.Fatal("expected no-ops on empty edge lists")
	}
	src := g.AddSource()
	if g.CutInput(src) || g.AddWeight(src, 1) {
		t.Fatal("expected no-ops on nodes without the sink role")
	}
	assertSymmetric(t, g)
}

func TestWeightOperationsAddressInputCursor(t *testing.T) {
	g := New()
	a, b := g.AddSource(), g.AddSource()
	k := g.AddSink(0)
	g.Connect(a, k, 1)
	g.Connect(b, k, 1)
	g.Node(k).MoveInputCursor(1)

	g.AddWeight(k, 1)
	g.ScaleWeight(k, 2)
	g.ScaleWeight(k, 0.5)
	g.AddWeight(k, -0.25)

	edges := g.Node(k).Inputs()
	if edges[0].Weight != 1 || edges[1].Weight != 1.75 {
		t.Fatalf("unexpected weights: %+v", edges)
	}
}

func TestMoveOutputsAppendsDefaultWeightEdges(t *testing.T) {
	g := New()
	a := g.AddSource()
	p := g.AddGrowing(genome.End(), 0)
	q := g.AddGrowing(genome.End(), 0)
	x, y := g.AddSink(0), g.AddSink(0)
	g.Connect(p, x, 2)
	g.Connect(a, x, 4)
	g.Connect(p, y, 3)

	if !g.MoveOutputs(p, q) {
		t.Fatal("expected move to succeed")
	}
	if len(g.Node(p).Outputs()) != 0 {
		t.Fatalf("expected p outputs cleared: %+v", g.Node(p).Outputs())
	}
	if got := g.Node(q).Outputs(); len(got) != 2 || got[0] != x || got[1] != y {
		t.Fatalf("unexpected q outputs: %+v", got)
	}
	want := []Edge{{From: a, Weight: 4}, {From: q, Weight: DefaultWeight}}
	if got := g.Node(x).Inputs(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected x inputs: got=%+v want=%+v", got, want)
	}
	if got := g.Node(y).Inputs(); len(got) != 1 || got[0] != (Edge{From: q, Weight: DefaultWeight}) {
		t.Fatalf("unexpected y inputs: %+v", got)
	}
	assertSymmetric(t, g)

	if g.MoveOutputs(p, p) {
		t.Fatal("expected self move to be rejected")
	}
}

func TestRemoveNodeDetachesEdges(t *testing.T) {
	g := New()
	a := g.AddSource()
	p := g.AddGrowing(genome.End(), 0)
	k := g.AddSink(0)
	g.Connect(a, p, 1)
	g.Connect(p, k, 1)
	g.Connect(a, k, 1)

	if !g.RemoveNode(p) {
		t.Fatal("expected removal")
	}
	if g.Node(p) != nil || g.Len() != 2 {
		t.Fatalf("unexpected arena after removal: len=%d", g.Len())
	}
	if len(g.Growing()) != 0 {
		t.Fatal("expected removed node to leave the growing list")
	}
	if got := g.Node(k).Inputs(); len(got) != 1 || got[0].From != a {
		t.Fatalf("unexpected sink inputs: %+v", got)
	}
	if g.RemoveNode(p) {
		t.Fatal("expected second removal to be a no-op")
	}
	assertSymmetric(t, g)

	// Handles are not reused.
	if h := g.AddSource(); h != Handle(3) {
		t.Fatalf("unexpected new handle: %d", h)
	}
}

func TestPrune(t *testing.T) {
	g := New()
	in1, in2 := g.AddSource(), g.AddSource()
	out := g.AddSink(0)
	orphanSink := g.AddSink(0)
	live := g.AddGrowing(genome.End(), 0)
	deadEnd := g.AddGrowing(genome.End(), 0)
	unfinished := g.AddGrowing(genome.Wait(genome.End()), 0)

	g.Connect(in1, live, 1)
	g.Connect(live, out, 1)
	g.Connect(in2, deadEnd, 1)
	g.Connect(in1, unfinished, 1)
	g.Connect(unfinished, out, 1)

	removed := g.Prune(out)
	// deadEnd, unfinished, orphanSink, then in2 once deadEnd is gone.
	if removed != 4 {
		t.Fatalf("unexpected removed count: got=%d want=4", removed)
	}
	for _, h := range []Handle{in2, orphanSink, deadEnd, unfinished} {
		if g.Node(h) != nil {
			t.Fatalf("expected %d to be pruned", h)
		}
	}
	for _, h := range []Handle{in1, out, live} {
		if g.Node(h) == nil {
			t.Fatalf("expected %d to survive", h)
		}
	}
	assertSymmetric(t, g)

	lonely := New()
	kept := lonely.AddSink(0)
	if n := lonely.Prune(kept); n != 0 || lonely.Node(kept) == nil {
		t.Fatal("expected pinned node to survive prune")
	}
}

func TestFormatMarksCursor(t *testing.T) {
	g := New()
	a, b := g.AddSource(), g.AddSource()
	p := g.AddGrowing(genome.Ser(genome.End(), genome.End()), 1)
	k := g.AddSink(0)
	g.Connect(a, p, 1)
	g.Connect(b, p, 2)
	g.Connect(p, k, 1)
	g.Node(p).MoveInputCursor(1)

	out := Format(g)
	for _, want := range []string{
		"outputs: 1",
		"inputs: 2",
		"programs: 1",
		"p#2 outputs={out#3} inputs={in#0(1), <in#1(2)>}",
		"program=Ser(End(), End())",
		"out#3 inputs={<p#2(1)>} threshold=0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}

func assertSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.CheckSymmetry(); err != nil {
		t.Fatalf("symmetry violated: %v", err)
	}
}
