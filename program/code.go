// Package program defines the flat instruction format the code emitter
// produces and the VM executes: Code/OpCode here, the emitter itself in
// emit.go.
package program

import (
	"fmt"
	"strings"

	"github.com/bnucip/wordregex/syntax"
	"github.com/bnucip/wordregex/token"
)

// OpCode tags one instruction's kind: control, group capture, lookaround
// bookkeeping, or leaf consumer.
type OpCode byte

const (
	OpAlt OpCode = iota
	OpGoto // defined for completeness; never emitted
	OpNop
	OpStop

	OpSetMark
	OpCaptureMark

	OpSetJump
	OpGetJump
	OpForeJump
	OpBackJump

	OpWord
	OpWordSet
	OpDynamicWord
	OpDynamicWordSet
	OpAny
	OpPosition
	OpRef
)

func (op OpCode) String() string {
	switch op {
	case OpAlt:
		return "Alt"
	case OpGoto:
		return "Goto"
	case OpNop:
		return "Nop"
	case OpStop:
		return "Stop"
	case OpSetMark:
		return "SetMark"
	case OpCaptureMark:
		return "CaptureMark"
	case OpSetJump:
		return "SetJump"
	case OpGetJump:
		return "GetJump"
	case OpForeJump:
		return "ForeJump"
	case OpBackJump:
		return "BackJump"
	case OpWord:
		return "Word"
	case OpWordSet:
		return "WordSet"
	case OpDynamicWord:
		return "DynamicWord"
	case OpDynamicWordSet:
		return "DynamicWordSet"
	case OpAny:
		return "Any"
	case OpPosition:
		return "Position"
	case OpRef:
		return "Ref"
	default:
		return fmt.Sprintf("OpCode(%d)", byte(op))
	}
}

// Code is one emitted instruction. ID is dense and equal to the
// instruction's index in a Program's Codes slice; Arg holds successor ids
// (more than one element only for OpAlt).
type Code struct {
	ID          int
	Type        OpCode
	Arg         []int
	RightToLeft bool

	// OpCaptureMark
	CaptureIndex int
	CaptureName  string

	// OpPosition
	Position syntax.PositionKind

	// OpRef
	RefIndex    int
	RefReversed bool

	// OpWord
	Shape string
	// OpWordSet
	Words []string
	// OpDynamicWord
	Dynamic token.Predicate
	// OpDynamicWordSet
	DynamicSet []token.Predicate
}

// Program is a compiled pattern: an immutable, dense instruction vector
// plus the capture-index-to-name table the emitter builds while walking
// Capture nodes. Both are share-safe across concurrently running Runners.
type Program struct {
	Codes      []Code
	GroupNames map[int]string
}

// Dump renders codes one per line, for the compile CLI subcommand and
// for tests that want a readable program listing.
func Dump(p *Program) string {
	var b strings.Builder
	for _, c := range p.Codes {
		fmt.Fprintf(&b, "%d %s", c.ID, c.Type)
		if c.RightToLeft {
			b.WriteString(" -rtl")
		}
		switch c.Type {
		case OpWord:
			fmt.Fprintf(&b, " %q", c.Shape)
		case OpWordSet:
			fmt.Fprintf(&b, " [#%s]", strings.Join(c.Words, "|"))
		case OpDynamicWord:
			fmt.Fprintf(&b, " %+v", c.Dynamic)
		case OpDynamicWordSet:
			fmt.Fprintf(&b, " %+v", c.DynamicSet)
		case OpCaptureMark:
			fmt.Fprintf(&b, " cap=%d name=%s", c.CaptureIndex, c.CaptureName)
		case OpPosition:
			fmt.Fprintf(&b, " %s", c.Position)
		case OpRef:
			fmt.Fprintf(&b, " ref=%d reversed=%v", c.RefIndex, c.RefReversed)
		}
		fmt.Fprintf(&b, " -> %v\n", c.Arg)
	}
	return b.String()
}
