package graph

import "ontogeny/internal/genome"

// DefaultWeight is the weight of edges created without an explicit one.
const DefaultWeight = 1.0

// Graph owns every node of one experiment. It is not safe for concurrent use;
// growth and evaluation treat it as a single logically owned structure.
type Graph struct {
	nodes   []*Node
	growing []Handle
	live    int
}

func New() *Graph {
	return &Graph{}
}

func (g *Graph) add(n *Node) Handle {
	n.handle = Handle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.live++
	return n.handle
}

// AddSource creates a pure source whose value the caller supplies.
func (g *Graph) AddSource() Handle {
	return g.add(&Node{out: &Outlets{}})
}

// AddSink creates a pure sink read back by the caller.
func (g *Graph) AddSink(threshold float64) Handle {
	return g.add(&Node{in: &Inlets{Threshold: threshold}})
}

// AddGrowing creates a node that is both source and sink and runs root from
// its first instruction.
func (g *Graph) AddGrowing(root *genome.Node, threshold float64) Handle {
	return g.spawn(root, root, threshold, 0)
}

func (g *Graph) spawn(root, cursor *genome.Node, threshold float64, inputCursor int) Handle {
	h := g.add(&Node{
		out:     &Outlets{},
		in:      &Inlets{Threshold: threshold, Cursor: inputCursor},
		program: &Program{Root: root, Cursor: cursor},
	})
	g.growing = append(g.growing, h)
	return h
}

// Spawn creates an offspring of parent sharing its genome. The offspring's
// cursor starts at the given instruction; it inherits the parent's threshold.
func (g *Graph) Spawn(parent Handle, cursor *genome.Node, inputCursor int) Handle {
	p := g.Node(parent)
	if p == nil {
		return NoHandle
	}
	return g.spawn(p.Genome(), cursor, p.Threshold(), inputCursor)
}

// Node returns the live node for h, or nil.
func (g *Graph) Node(h Handle) *Node {
	if h < 0 || int(h) >= len(g.nodes) {
		return nil
	}
	return g.nodes[h]
}

// Source returns the source view of h when it has that capability.
func (g *Graph) Source(h Handle) (Source, bool) {
	n := g.Node(h)
	if n == nil || !n.IsSource() {
		return nil, false
	}
	return n, true
}

// Sink returns the sink view of h when it has that capability.
func (g *Graph) Sink(h Handle) (Sink, bool) {
	n := g.Node(h)
	if n == nil || !n.IsSink() {
		return nil, false
	}
	return n, true
}

// Len is the number of live nodes.
func (g *Graph) Len() int {
	return g.live
}

// Handles lists live nodes in creation order.
func (g *Graph) Handles() []Handle {
	out := make([]Handle, 0, g.live)
	for h, n := range g.nodes {
		if n != nil {
			out = append(out, Handle(h))
		}
	}
	return out
}

// Growing lists live growing nodes in creation order. Growth cycles iterate a
// prefix of this list taken at cycle start.
func (g *Graph) Growing() []Handle {
	out := make([]Handle, 0, len(g.growing))
	for _, h := range g.growing {
		if g.nodes[h] != nil {
			out = append(out, h)
		}
	}
	return out
}

func (g *Graph) Sources() []Handle {
	return g.filter((*Node).IsPureSource)
}

func (g *Graph) Sinks() []Handle {
	return g.filter((*Node).IsPureSink)
}

func (g *Graph) filter(keep func(*Node) bool) []Handle {
	var out []Handle
	for h, n := range g.nodes {
		if n != nil && keep(n) {
			out = append(out, Handle(h))
		}
	}
	return out
}

// EdgeCount is the total number of incoming edge entries across all sinks.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		if n != nil {
			total += len(n.Inputs())
		}
	}
	return total
}

// RemoveNode detaches every edge touching h and drops it from the arena.
func (g *Graph) RemoveNode(h Handle) bool {
	n := g.Node(h)
	if n == nil {
		return false
	}
	for len(n.Inputs()) > 0 {
		g.Disconnect(n.in.Edges[len(n.in.Edges)-1].From, h)
	}
	for len(n.Outputs()) > 0 {
		g.Disconnect(h, n.out.Links[len(n.out.Links)-1])
	}
	g.nodes[h] = nil
	g.live--
	return true
}
