package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/growth"
)

func TestObserverCountsGrowth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	g := graph.New()
	in := g.AddSource()
	out := g.AddSink(0)
	seed := g.AddGrowing(genome.Ser(genome.Unary(genome.OpWInc, genome.End()), genome.End()), 0)
	g.Connect(in, seed, 1)
	g.Connect(seed, out, 1)

	result, err := growth.NewEngine(g, growth.Config{Observer: m}).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := testutil.ToFloat64(m.instructions.WithLabelValues("Ser")); got != 1 {
		t.Fatalf("Ser count: got=%g want=1", got)
	}
	if got := testutil.ToFloat64(m.instructions.WithLabelValues("WInc")); got != 1 {
		t.Fatalf("WInc count: got=%g want=1", got)
	}
	if got := testutil.ToFloat64(m.spawned); got != 1 {
		t.Fatalf("spawned: got=%g want=1", got)
	}
	if got := testutil.ToFloat64(m.cycles); got != float64(result.Cycles) {
		t.Fatalf("cycles: got=%g want=%d", got, result.Cycles)
	}
	if got := testutil.ToFloat64(m.population); got != 2 {
		t.Fatalf("population: got=%g want=2", got)
	}
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTrial(0.5)
	m.ObserveTrial(3)

	if n := testutil.CollectAndCount(reg, "ontogeny_trial_squared_error"); n != 1 {
		t.Fatalf("histogram series: got=%d want=1", n)
	}

	var b strings.Builder
	if err := WriteText(&b, reg); err != nil {
		t.Fatalf("write text: %v", err)
	}
	for _, want := range []string{
		"ontogeny_trial_squared_error_count 2",
		"ontogeny_trial_squared_error_sum 3.5",
		"# TYPE ontogeny_growth_cycles_total counter",
	} {
		if !strings.Contains(b.String(), want) {
			t.Fatalf("exposition missing %q:\n%s", want, b.String())
		}
	}
}

func TestNilRegistererLeavesCollectorsUsable(t *testing.T) {
	m := New(nil)
	m.Executed(0, genome.OpWait)
	if got := testutil.ToFloat64(m.instructions.WithLabelValues("Wait")); got != 1 {
		t.Fatalf("unregistered counter: got=%g want=1", got)
	}
}
