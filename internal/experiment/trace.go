package experiment

import (
	"fmt"
	"io"
	"strings"

	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/growth"
)

// tracer prints the graph as it grows: the seeded graph up front, one line per
// executed instruction, and a full dump after every cycle. The first write
// error is kept and further output is dropped.
type tracer struct {
	w   io.Writer
	g   *graph.Graph
	err error
}

func newTracer(w io.Writer, g *graph.Graph) *tracer {
	t := &tracer{w: w, g: g}
	t.printf("# seed\n%s", graph.Format(g))
	return t
}

func (t *tracer) Executed(h graph.Handle, kind genome.Kind) {
	t.printf("# grew %s by %s\n", t.g.Name(h), kind)
}

func (t *tracer) Spawned(parent, child graph.Handle, kind genome.Kind) {
	t.printf("# %s spawned %s via %s\n", t.g.Name(parent), t.g.Name(child), kind)
}

func (t *tracer) CycleDone(g *graph.Graph, stats growth.CycleStats) {
	t.printf("# cycle %d executed=%d spawned=%d population=%d pending=%d %s\n",
		stats.Cycle, stats.Executed, stats.Spawned, stats.Population, stats.Pending, strings.Repeat("-", 24))
	t.printf("%s", graph.Format(g))
}

func (t *tracer) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
