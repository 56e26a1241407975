package eval

import "ontogeny/internal/graph"

// Evaluator pulls values through a grown graph. Values are memoized on the
// nodes themselves, so one graph should be evaluated by one Evaluator at a
// time and never while it is still growing.
//
// The graph must be acyclic. Growth through Ser and Par preserves that.
type Evaluator struct {
	policy Policy
	squash SquashFunc
}

func NewEvaluator(policy Policy) (*Evaluator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	squash, err := policy.squash()
	if err != nil {
		return nil, err
	}
	return &Evaluator{policy: policy, squash: squash}, nil
}

func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Evaluate returns the value of h, computing and caching it and every
// upstream value it depends on. Unknown handles evaluate to 0.
func (e *Evaluator) Evaluate(g *graph.Graph, h graph.Handle) float64 {
	n := g.Node(h)
	if n == nil {
		return 0
	}
	if v, ok := n.Cached(); ok {
		return v
	}
	if !n.IsSink() {
		n.Store(n.Input())
		return n.Input()
	}

	sum := 0.0
	for _, edge := range n.Inputs() {
		sum += edge.Weight * e.Evaluate(g, edge.From)
	}
	v := e.policy.apply(sum, n.Threshold(), e.squash)
	n.Store(v)
	return v
}

// Reset clears h's cached value and spreads to neighbours in both directions,
// stopping at nodes that are already cleared.
func (e *Evaluator) Reset(g *graph.Graph, h graph.Handle) {
	n := g.Node(h)
	if n == nil || !n.Evaluated() {
		return
	}
	n.Invalidate()
	stack := []graph.Handle{h}
	for len(stack) > 0 {
		cur := g.Node(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		for _, edge := range cur.Inputs() {
			stack = invalidate(g, edge.From, stack)
		}
		for _, to := range cur.Outputs() {
			stack = invalidate(g, to, stack)
		}
	}
}

func invalidate(g *graph.Graph, h graph.Handle, stack []graph.Handle) []graph.Handle {
	n := g.Node(h)
	if n == nil || !n.Evaluated() {
		return stack
	}
	n.Invalidate()
	return append(stack, h)
}

// ResetAll clears every cached value in g.
func (e *Evaluator) ResetAll(g *graph.Graph) {
	for _, h := range g.Handles() {
		g.Node(h).Invalidate()
	}
}

// SetInput assigns the value of a pure source and clears whatever was
// computed from the old value.
func (e *Evaluator) SetInput(g *graph.Graph, h graph.Handle, v float64) bool {
	n := g.Node(h)
	if n == nil || !n.IsPureSource() {
		return false
	}
	n.SetInput(v)
	e.Reset(g, h)
	return true
}

// Outputs evaluates every pure sink of g in handle order.
func (e *Evaluator) Outputs(g *graph.Graph) []float64 {
	sinks := g.Sinks()
	out := make([]float64, 0, len(sinks))
	for _, h := range sinks {
		out = append(out, e.Evaluate(g, h))
	}
	return out
}
