package genome

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrSyntax      = errors.New("genome syntax error")
	ErrUnknownKind = errors.New("unknown genome opcode")
)

// Format renders a tree in call notation, e.g. Ser(Par(End(), End()), End()).
func Format(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func (n *Node) String() string {
	return Format(n)
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteString(n.Kind().String())
	b.WriteByte('(')
	switch {
	case n == nil || n.kind == OpEnd:
	case n.sibling != nil:
		writeNode(b, n.next)
		b.WriteString(", ")
		writeNode(b, n.sibling)
	case n.next != nil:
		writeNode(b, n.next)
	}
	b.WriteByte(')')
}

// Parse reads the notation produced by Format.
func Parse(text string) (*Node, error) {
	p := &parser{src: text}
	n, err := p.node(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input %q", p.src[p.pos:])
	}
	return n, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) *Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// maxParseDepth bounds recursion on hostile input.
const maxParseDepth = 4096

type parser struct {
	src string
	pos int
}

func (p *parser) node(depth int) (*Node, error) {
	if depth > maxParseDepth {
		return nil, p.errorf("nesting deeper than %d", maxParseDepth)
	}
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, p.errorf("expected opcode name")
	}
	kind, ok := KindByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrUnknownKind, name, start)
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var children []*Node
	p.skipSpace()
	if !p.peek(')') {
		for {
			child, err := p.node(depth + 1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			p.skipSpace()
			if !p.peek(',') {
				break
			}
			p.pos++
		}
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	limit := 1
	switch {
	case kind == OpEnd:
		limit = 0
	case kind.IsBranch():
		limit = 2
	}
	if len(children) > limit {
		return nil, p.errorf("%s takes at most %d children, got %d", kind, limit, len(children))
	}

	var next, sibling *Node
	if len(children) > 0 {
		next = children[0]
	}
	if len(children) > 1 {
		sibling = children[1]
	}
	return New(kind, next, sibling), nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if !p.peek(c) {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}
