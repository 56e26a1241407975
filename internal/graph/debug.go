package graph

import (
	"fmt"
	"strings"

	"ontogeny/internal/genome"
)

// Name labels a handle by role: in#N for pure sources, out#N for pure sinks,
// p#N for growing nodes.
func (g *Graph) Name(h Handle) string {
	n := g.Node(h)
	switch {
	case n == nil:
		return fmt.Sprintf("gone#%d", h)
	case n.IsGrowing():
		return fmt.Sprintf("p#%d", h)
	case n.IsPureSource():
		return fmt.Sprintf("in#%d", h)
	default:
		return fmt.Sprintf("out#%d", h)
	}
}

// Format returns a multiline dump grouped into outputs, inputs and programs.
// The input edge under each cursor is wrapped in angle brackets.
func Format(g *Graph) string {
	var b strings.Builder

	fmt.Fprintf(&b, "outputs: %d\n", len(g.Sinks()))
	for _, h := range g.Sinks() {
		n := g.nodes[h]
		fmt.Fprintf(&b, "  %s inputs=%s threshold=%g\n", g.Name(h), g.formatInputs(n), n.Threshold())
	}

	fmt.Fprintf(&b, "inputs: %d\n", len(g.Sources()))
	for _, h := range g.Sources() {
		fmt.Fprintf(&b, "  %s outputs=%s\n", g.Name(h), g.formatOutputs(g.nodes[h]))
	}

	fmt.Fprintf(&b, "programs: %d\n", len(g.Growing()))
	for _, h := range g.Growing() {
		n := g.nodes[h]
		fmt.Fprintf(&b, "  %s outputs=%s inputs=%s in_cursor=%d out_cursor=%d threshold=%g program=%s\n",
			g.Name(h),
			g.formatOutputs(n),
			g.formatInputs(n),
			n.InputCursor(),
			n.OutputCursor(),
			n.Threshold(),
			genome.Format(n.Instruction()),
		)
	}
	return b.String()
}

func (g *Graph) formatOutputs(n *Node) string {
	names := make([]string, 0, len(n.Outputs()))
	for _, h := range n.Outputs() {
		names = append(names, g.Name(h))
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func (g *Graph) formatInputs(n *Node) string {
	edges := n.Inputs()
	marked := Resolve(n.InputCursor(), len(edges))
	parts := make([]string, 0, len(edges))
	for i, e := range edges {
		item := fmt.Sprintf("%s(%g)", g.Name(e.From), e.Weight)
		if i == marked {
			item = "<" + item + ">"
		}
		parts = append(parts, item)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
