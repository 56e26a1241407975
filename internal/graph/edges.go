package graph

import "fmt"

// Resolve maps a signed cursor into [0, length) by wrapping in either
// direction. An empty list resolves to 0.
func Resolve(cursor, length int) int {
	if length <= 0 {
		return 0
	}
	i := cursor % length
	if i < 0 {
		i += length
	}
	return i
}

// Connect adds an edge from a source-capable node to a sink-capable node and
// records it on both sides. It reports false when either end lacks the role.
func (g *Graph) Connect(from, to Handle, weight float64) bool {
	src, dst := g.Node(from), g.Node(to)
	if src == nil || dst == nil || !src.IsSource() || !dst.IsSink() {
		return false
	}
	src.out.Links = append(src.out.Links, to)
	dst.in.Edges = append(dst.in.Edges, Edge{From: from, Weight: weight})
	return true
}

// Disconnect removes one edge from -> to, keeping the order of both lists.
func (g *Graph) Disconnect(from, to Handle) bool {
	src, dst := g.Node(from), g.Node(to)
	removed := false
	if src != nil && src.out != nil {
		removed = removeLink(&src.out.Links, to) || removed
	}
	if dst != nil && dst.in != nil {
		removed = removeEdge(&dst.in.Edges, from) || removed
	}
	return removed
}

// CutInput removes the incoming edge addressed by h's input cursor. The slot
// is refilled with the last edge so the cut is constant time.
func (g *Graph) CutInput(h Handle) bool {
	n := g.Node(h)
	if n == nil || n.in == nil || len(n.in.Edges) == 0 {
		return false
	}
	edges := n.in.Edges
	i := Resolve(n.in.Cursor, len(edges))
	from := edges[i].From
	last := len(edges) - 1
	edges[i] = edges[last]
	n.in.Edges = edges[:last]

	if src := g.Node(from); src != nil && src.out != nil {
		removeLink(&src.out.Links, h)
	}
	return true
}

// CutOutput removes the outgoing link addressed by h's output cursor.
func (g *Graph) CutOutput(h Handle) bool {
	n := g.Node(h)
	if n == nil || n.out == nil || len(n.out.Links) == 0 {
		return false
	}
	links := n.out.Links
	i := Resolve(n.out.Cursor, len(links))
	to := links[i]
	last := len(links) - 1
	links[i] = links[last]
	n.out.Links = links[:last]

	if dst := g.Node(to); dst != nil && dst.in != nil {
		removeEdge(&dst.in.Edges, h)
	}
	return true
}

// AddWeight adds delta to the weight of the edge under h's input cursor.
func (g *Graph) AddWeight(h Handle, delta float64) bool {
	e := g.addressedEdge(h)
	if e == nil {
		return false
	}
	e.Weight += delta
	return true
}

// ScaleWeight multiplies the weight of the edge under h's input cursor.
func (g *Graph) ScaleWeight(h Handle, factor float64) bool {
	e := g.addressedEdge(h)
	if e == nil {
		return false
	}
	e.Weight *= factor
	return true
}

func (g *Graph) addressedEdge(h Handle) *Edge {
	n := g.Node(h)
	if n == nil || n.in == nil || len(n.in.Edges) == 0 {
		return nil
	}
	return &n.in.Edges[Resolve(n.in.Cursor, len(n.in.Edges))]
}

// MoveOutputs hands every consumer of from over to to. In each consumer the
// edge from from is removed, keeping the order of the rest, and a fresh
// default-weight edge from to is appended, so a consumer's input cursor sees
// the moved edge at the end of its list. from is left with no outputs.
func (g *Graph) MoveOutputs(from, to Handle) bool {
	src, dst := g.Node(from), g.Node(to)
	if src == nil || dst == nil || !src.IsSource() || !dst.IsSource() || from == to {
		return false
	}
	links := src.out.Links
	src.out.Links = nil
	for _, k := range links {
		consumer := g.Node(k)
		if consumer == nil || consumer.in == nil {
			continue
		}
		removeEdge(&consumer.in.Edges, from)
		g.Connect(to, k, DefaultWeight)
	}
	return true
}

// CheckSymmetry verifies that for every pair (S, K) the number of times K
// appears in S's outputs equals the number of times S appears in K's inputs.
func (g *Graph) CheckSymmetry() error {
	type pair struct{ from, to Handle }
	balance := make(map[pair]int)
	for h, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, to := range n.Outputs() {
			if g.Node(to) == nil {
				return fmt.Errorf("node %d links to removed node %d", h, to)
			}
			balance[pair{Handle(h), to}]++
		}
		for _, e := range n.Inputs() {
			if g.Node(e.From) == nil {
				return fmt.Errorf("node %d has input from removed node %d", h, e.From)
			}
			balance[pair{e.From, Handle(h)}]--
		}
	}
	for p, diff := range balance {
		if diff != 0 {
			return fmt.Errorf("asymmetric edge %d->%d: outputs-inputs=%d", p.from, p.to, diff)
		}
	}
	return nil
}

func removeLink(links *[]Handle, target Handle) bool {
	for i, h := range *links {
		if h == target {
			*links = append((*links)[:i], (*links)[i+1:]...)
			return true
		}
	}
	return false
}

func removeEdge(edges *[]Edge, from Handle) bool {
	for i, e := range *edges {
		if e.From == from {
			*edges = append((*edges)[:i], (*edges)[i+1:]...)
			return true
		}
	}
	return false
}
