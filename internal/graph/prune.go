package graph

// Prune removes nodes that cannot contribute to a sink's value: growing nodes
// that never finished, growing nodes that feed nothing, and nodes left with no
// edges at all. Removal can strand upstream nodes, so it repeats until stable.
// Handles in keep are never removed. It returns the number of nodes removed.
func (g *Graph) Prune(keep ...Handle) int {
	pinned := make(map[Handle]struct{}, len(keep))
	for _, h := range keep {
		pinned[h] = struct{}{}
	}

	removed := 0
	for {
		changed := false
		for _, h := range g.Handles() {
			if _, ok := pinned[h]; ok {
				continue
			}
			if dead(g.nodes[h]) {
				g.RemoveNode(h)
				removed++
				changed = true
			}
		}
		if !changed {
			return removed
		}
	}
}

func dead(n *Node) bool {
	switch {
	case n.IsGrowing() && !n.Done():
		return true
	case n.IsGrowing() && len(n.Outputs()) == 0:
		return true
	default:
		return len(n.Outputs()) == 0 && len(n.Inputs()) == 0
	}
}
