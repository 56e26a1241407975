package genome

// Node is one immutable instruction of a growth program. Trees are shared by
// every growing node descended from the same seed, so nothing mutates a Node
// after construction.
type Node struct {
	kind    Kind
	next    *Node
	sibling *Node
}

// End is the terminal instruction. A node whose cursor reaches it is done.
func End() *Node {
	return &Node{kind: OpEnd}
}

// Wait spends one growth cycle without touching the graph.
func Wait(next *Node) *Node {
	return &Node{kind: OpWait, next: next}
}

// Unary builds a single-successor instruction. Branch kinds get no sibling;
// use Ser or Par for those.
func Unary(kind Kind, next *Node) *Node {
	return &Node{kind: kind, next: next}
}

// Ser splices an offspring running sibling after the executing node.
func Ser(next, sibling *Node) *Node {
	return &Node{kind: OpSer, next: next, sibling: sibling}
}

// Par spawns an offspring running sibling, wired in parallel with the
// executing node.
func Par(next, sibling *Node) *Node {
	return &Node{kind: OpPar, next: next, sibling: sibling}
}

// New builds a node of any kind. Children that the kind does not use are dropped.
func New(kind Kind, next, sibling *Node) *Node {
	switch {
	case kind == OpEnd:
		return End()
	case kind.IsBranch():
		return &Node{kind: kind, next: next, sibling: sibling}
	default:
		return &Node{kind: kind, next: next}
	}
}

// Kind returns the opcode. A nil node reads as End.
func (n *Node) Kind() Kind {
	if n == nil {
		return OpEnd
	}
	return n.kind
}

// Next returns the primary successor, or nil once the program is finished.
func (n *Node) Next() *Node {
	if n.IsDone() {
		return nil
	}
	return n.next
}

// Sibling returns the program handed to the node spawned by a branch.
func (n *Node) Sibling() *Node {
	if n == nil {
		return nil
	}
	return n.sibling
}

// IsDone reports whether the cursor sits on the terminal instruction. A
// missing child in a malformed tree behaves like End.
func (n *Node) IsDone() bool {
	return n == nil || n.kind == OpEnd
}

// HasMore is the negation of IsDone.
func (n *Node) HasMore() bool {
	return !n.IsDone()
}

// Size counts the nodes reachable from n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	return 1 + n.next.Size() + n.sibling.Size()
}

// Depth is the length of the longest root-to-leaf path, counting nodes.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.next.Depth(), n.sibling.Depth())
}

// Count returns how many reachable nodes carry the given opcode.
func (n *Node) Count(kind Kind) int {
	if n == nil {
		return 0
	}
	c := n.next.Count(kind) + n.sibling.Count(kind)
	if n.kind == kind {
		c++
	}
	return c
}

// PathLength is the number of non-terminal instructions executed by a single
// cursor that always follows Next from n.
func (n *Node) PathLength() int {
	steps := 0
	for cur := n; cur.HasMore(); cur = cur.Next() {
		steps++
	}
	return steps
}

// Reference returns the hand-built genome of the classic demo run: three
// sources, two sinks, two nested branches.
func Reference() *Node {
	return Ser(
		Par(
			Unary(OpInInc, Unary(OpCutIn, End())),
			Unary(OpCutIn, End()),
		),
		Ser(
			Par(Unary(OpTInc, End()), End()),
			Unary(OpWDec, End()),
		),
	)
}
