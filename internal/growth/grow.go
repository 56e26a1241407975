package growth

import (
	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
)

// Grow executes exactly the instruction under h's genome cursor and advances
// the cursor unless that instruction was End. It reports whether h is done.
// Nodes without a program are always done and are left untouched.
func Grow(g *graph.Graph, h graph.Handle) bool {
	step(g, h)
	n := g.Node(h)
	return n == nil || n.Done()
}

// step is Grow with bookkeeping for the engine: the opcode executed and the
// offspring it created, if any.
func step(g *graph.Graph, h graph.Handle) (genome.Kind, graph.Handle, bool) {
	n := g.Node(h)
	if n == nil || !n.IsGrowing() {
		return genome.OpEnd, graph.NoHandle, false
	}
	instr := n.Instruction()
	kind := instr.Kind()
	child := graph.NoHandle

	switch kind {
	case genome.OpSer:
		child = splitSerial(g, h, instr.Sibling())
	case genome.OpPar:
		child = splitParallel(g, h, instr.Sibling())
	case genome.OpInInc:
		n.MoveInputCursor(1)
	case genome.OpInDec:
		n.MoveInputCursor(-1)
	case genome.OpOutInc:
		n.MoveOutputCursor(1)
	case genome.OpOutDec:
		n.MoveOutputCursor(-1)
	case genome.OpCutIn:
		g.CutInput(h)
	case genome.OpCutOut:
		g.CutOutput(h)
	case genome.OpWInc:
		g.AddWeight(h, 1)
	case genome.OpWDec:
		g.AddWeight(h, -1)
	case genome.OpWDbl:
		g.ScaleWeight(h, 2)
	case genome.OpWHalf:
		g.ScaleWeight(h, 0.5)
	case genome.OpTInc:
		n.SetThreshold(n.Threshold() + 1)
	case genome.OpTDec:
		n.SetThreshold(n.Threshold() - 1)
	case genome.OpTDbl:
		n.SetThreshold(n.Threshold() * 2)
	case genome.OpTHalf:
		n.SetThreshold(n.Threshold() / 2)
	case genome.OpWait:
	case genome.OpEnd:
		return kind, child, true
	}

	n.Advance(instr.Next())
	return kind, child, true
}

// splitSerial splices a new node after h: the offspring takes over every
// consumer h used to feed, and h feeds only the offspring.
func splitSerial(g *graph.Graph, h graph.Handle, program *genome.Node) graph.Handle {
	child := g.Spawn(h, program, 0)
	g.MoveOutputs(h, child)
	g.Connect(h, child, graph.DefaultWeight)
	return child
}

// splitParallel creates an offspring wired like h: same sources with the same
// weights, same consumers, same input cursor.
func splitParallel(g *graph.Graph, h graph.Handle, program *genome.Node) graph.Handle {
	n := g.Node(h)
	child := g.Spawn(h, program, n.InputCursor())

	outputs := append([]graph.Handle(nil), n.Outputs()...)
	inputs := append([]graph.Edge(nil), n.Inputs()...)
	for _, to := range outputs {
		g.Connect(child, to, graph.DefaultWeight)
	}
	for _, e := range inputs {
		g.Connect(e.From, child, e.Weight)
	}
	return child
}
