package graph

import "ontogeny/internal/genome"

// Handle addresses a node in a Graph. Handles stay valid for the lifetime of
// the graph and are never reused after removal.
type Handle int

const NoHandle Handle = -1

// Edge is one weighted entry in a sink's incoming list. The source keeps the
// reciprocal untagged handle in its outgoing list.
type Edge struct {
	From   Handle
	Weight float64
}

// Outlets is the source capability: who this node feeds, plus the output cursor.
type Outlets struct {
	Links  []Handle
	Cursor int
}

// Inlets is the sink capability: weighted inputs, the input cursor and the
// threshold applied after aggregation.
type Inlets struct {
	Edges     []Edge
	Cursor    int
	Threshold float64
}

// Program is the growth state of a growing node. Root is shared with every
// node spawned from the same seed; Cursor is private.
type Program struct {
	Root   *genome.Node
	Cursor *genome.Node
}

// Source is anything that produces a value for downstream sinks.
type Source interface {
	Handle() Handle
	Outputs() []Handle
	OutputCursor() int
}

// Sink is anything that aggregates weighted values from upstream sources.
type Sink interface {
	Handle() Handle
	Inputs() []Edge
	InputCursor() int
	Threshold() float64
}

// Node is the arena record. Capabilities are present or nil; a growing node
// carries all three.
type Node struct {
	handle  Handle
	out     *Outlets
	in      *Inlets
	program *Program

	input     float64
	value     float64
	evaluated bool
}

func (n *Node) Handle() Handle { return n.handle }

func (n *Node) IsSource() bool { return n.out != nil }

func (n *Node) IsSink() bool { return n.in != nil }

func (n *Node) IsGrowing() bool { return n.program != nil }

// IsPureSource reports a caller-driven input node.
func (n *Node) IsPureSource() bool { return n.out != nil && n.in == nil }

// IsPureSink reports a caller-read output node.
func (n *Node) IsPureSink() bool { return n.in != nil && n.out == nil }

func (n *Node) Outputs() []Handle {
	if n.out == nil {
		return nil
	}
	return n.out.Links
}

func (n *Node) OutputCursor() int {
	if n.out == nil {
		return 0
	}
	return n.out.Cursor
}

func (n *Node) Inputs() []Edge {
	if n.in == nil {
		return nil
	}
	return n.in.Edges
}

func (n *Node) InputCursor() int {
	if n.in == nil {
		return 0
	}
	return n.in.Cursor
}

func (n *Node) Threshold() float64 {
	if n.in == nil {
		return 0
	}
	return n.in.Threshold
}

// SetThreshold is a no-op on nodes without the sink capability.
func (n *Node) SetThreshold(t float64) {
	if n.in != nil {
		n.in.Threshold = t
	}
}

// MoveInputCursor shifts the signed input cursor. Wrapping happens lazily
// when the cursor is resolved against the current list.
func (n *Node) MoveInputCursor(delta int) {
	if n.in != nil {
		n.in.Cursor += delta
	}
}

func (n *Node) MoveOutputCursor(delta int) {
	if n.out != nil {
		n.out.Cursor += delta
	}
}

// Genome returns the root of the growth program, nil for non-growing nodes.
func (n *Node) Genome() *genome.Node {
	if n.program == nil {
		return nil
	}
	return n.program.Root
}

// Instruction returns the instruction the next growth step will execute.
func (n *Node) Instruction() *genome.Node {
	if n.program == nil {
		return nil
	}
	return n.program.Cursor
}

// Advance moves the genome cursor. Only the growth engine should call it.
func (n *Node) Advance(to *genome.Node) {
	if n.program != nil {
		n.program.Cursor = to
	}
}

// Done reports whether a growing node has reached its terminal instruction.
// Nodes that never grew are always done.
func (n *Node) Done() bool {
	if n.program == nil {
		return true
	}
	return n.program.Cursor.IsDone()
}

// Input is the externally supplied value of a pure source.
func (n *Node) Input() float64 { return n.input }

func (n *Node) SetInput(v float64) { n.input = v }

// Cached returns the memoized value and whether it is valid.
func (n *Node) Cached() (float64, bool) {
	return n.value, n.evaluated
}

func (n *Node) Store(v float64) {
	n.value = v
	n.evaluated = true
}

func (n *Node) Invalidate() {
	n.evaluated = false
}

func (n *Node) Evaluated() bool { return n.evaluated }
