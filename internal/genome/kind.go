package genome

import "fmt"

// Kind is the opcode carried by an instruction tree node.
type Kind int

const (
	OpSer Kind = iota // branch serially: splice a sibling after this node
	OpPar             // branch in parallel: clone this node's connectivity
	OpInInc
	OpInDec
	OpOutInc
	OpOutDec
	OpCutIn
	OpCutOut
	OpWInc
	OpWDec
	OpWDbl
	OpWHalf
	OpTInc
	OpTDec
	OpTDbl
	OpTHalf
	OpWait
	OpEnd

	numKinds
)

var kindNames = [numKinds]string{
	OpSer:    "Ser",
	OpPar:    "Par",
	OpInInc:  "InInc",
	OpInDec:  "InDec",
	OpOutInc: "OutInc",
	OpOutDec: "OutDec",
	OpCutIn:  "CutIn",
	OpCutOut: "CutOut",
	OpWInc:   "WInc",
	OpWDec:   "WDec",
	OpWDbl:   "WDbl",
	OpWHalf:  "WHalf",
	OpTInc:   "TInc",
	OpTDec:   "TDec",
	OpTDbl:   "TDbl",
	OpTHalf:  "THalf",
	OpWait:   "Wait",
	OpEnd:    "End",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared opcodes.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// IsBranch reports whether the opcode spawns a sibling and uses both children.
func (k Kind) IsBranch() bool {
	return k == OpSer || k == OpPar
}

// Kinds returns every opcode in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// KindByName resolves the notation name of an opcode.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}
