// Package syntax implements the pattern compiler: a lexer and
// recursive-descent-by-stack parser that turn a pattern string into an
// AST, plus the rewrite passes (placeholder expansion, simplification,
// lookbehind reversal) that normalize that AST before code generation.
package syntax

import (
	"fmt"
	"strings"

	"github.com/bnucip/wordregex/token"
)

// Operation tags the kind of an Expr node. Where a character regex would
// carry literal/char-class leaves, this alphabet's leaves are word
// predicates (Word/WordSet/DynamicWord/DynamicWordSet/Sth).
type Operation byte

const (
	OpNone Operation = iota

	// OpConcat concatenates Args in sequence. Zero Args means "match
	// nothing" (the empty concatenation).
	OpConcat
	// OpAlt tries each of Args in order, backtracking to the next on
	// failure.
	OpAlt

	// OpCapture wraps Args[0], recording the matched token span under
	// CaptureIndex (and CaptureName, if any). A non-capturing group
	// (?:...) never becomes an OpCapture: the parser yields its body
	// directly. program.Emit treats CaptureIndex == -1 as non-capturing.
	OpCapture

	// OpRepeat applies a {Min,Max} quantifier to Args[0]. Lazy reverses
	// the VM's branch-preference order at the emitted Alt.
	OpRepeat

	// OpLookaround is a zero-width assertion: (?=...) (?!...) (?<=...)
	// (?<!...). Positive selects assert-succeeds vs assert-fails;
	// RightToLeft selects lookahead vs lookbehind.
	OpLookaround

	// OpAny matches exactly one token, unconditionally.
	OpAny
	// OpPosition asserts a zero-width line boundary (Begin or End).
	OpPosition
	// OpRef matches the same token sequence as a previously closed
	// capture group, identified by RefIndex. Reversed requests the
	// captured span read back-to-front.
	OpRef
	// OpEmpty matches the empty string (zero tokens) unconditionally.
	OpEmpty

	// OpWord matches a literal run of CJK characters, which may span
	// multiple input tokens (see vm.Runner's Word consumption rule).
	OpWord
	// OpWordSet tries each literal alternative in Words, first match
	// wins, no backtracking between alternatives.
	OpWordSet
	// OpDynamicWord matches exactly one token against Dynamic.
	OpDynamicWord
	// OpDynamicWordSet tries each predicate in DynamicSet in order.
	OpDynamicWordSet

	// OpSth is a named placeholder — "a space-delimited identifier" in
	// the surface grammar — that Expand replaces with the compiled tree
	// of the corresponding named subpattern. No OpSth node may reach
	// program.Emit; Expand must run first.
	OpSth

	// opLeftParen and opVerticalBar are transient parse-time markers.
	// They live only on the parser's node stack and must never appear in
	// the tree Parse returns.
	opLeftParen
	opVerticalBar
)

func (op Operation) String() string {
	switch op {
	case OpNone:
		return "None"
	case OpConcat:
		return "Concat"
	case OpAlt:
		return "Alt"
	case OpCapture:
		return "Capture"
	case OpRepeat:
		return "Repeat"
	case OpLookaround:
		return "Lookaround"
	case OpAny:
		return "Any"
	case OpPosition:
		return "Position"
	case OpRef:
		return "Ref"
	case OpEmpty:
		return "Empty"
	case OpWord:
		return "Word"
	case OpWordSet:
		return "WordSet"
	case OpDynamicWord:
		return "DynamicWord"
	case OpDynamicWordSet:
		return "DynamicWordSet"
	case OpSth:
		return "Sth"
	case opLeftParen:
		return "LeftParen"
	case opVerticalBar:
		return "VerticalBar"
	default:
		return fmt.Sprintf("Operation(%d)", byte(op))
	}
}

// PositionKind distinguishes the two OpPosition anchors.
type PositionKind byte

const (
	BeginLine PositionKind = iota + 1
	EndLine
)

func (k PositionKind) String() string {
	if k == BeginLine {
		return "^"
	}
	return "$"
}

// Expr is a single AST node. It carries no parent pointer: every pass
// that needs ancestor context (the lookbehind reversal, the emitter) is a
// recursive function that threads that context down through its own call
// stack instead.
type Expr struct {
	Op          Operation
	Args        []*Expr
	RightToLeft bool

	// OpWord
	Shape string
	// OpWordSet
	Words []string

	// OpDynamicWord
	Dynamic token.Predicate
	// OpDynamicWordSet
	DynamicSet []token.Predicate

	// OpCapture
	CaptureIndex int
	CaptureName  string

	// OpRepeat
	Min, Max int
	Lazy     bool

	// OpLookaround
	Positive bool

	// OpPosition
	Position PositionKind

	// OpRef
	RefIndex    int
	RefReversed bool

	// OpSth
	SthName string

	// opLeftParen (transient marker only): which flavour of group this
	// paren opened, so the matching ')' knows what real node to build.
	ParenKind parenKind
}

// parenKind distinguishes the group flavours the parser can push on
// encountering '('. Only meaningful on a transient opLeftParen marker
// node; discarded once the matching ')' is processed.
type parenKind byte

const (
	parenCapture parenKind = iota
	parenNonCapture
	parenLookaheadPos
	parenLookaheadNeg
	parenLookbehindPos
	parenLookbehindNeg
	parenNamedCapture
)

// Dump renders e as a parenthesized s-expression, for debug output (the
// compile CLI subcommand) and for tests that want to assert on tree shape
// without a full reflect.DeepEqual of every internal field.
func Dump(e *Expr) string {
	var b strings.Builder
	dump(&b, e)
	return b.String()
}

func dump(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	rtl := ""
	if e.RightToLeft {
		rtl = "-L"
	}
	switch e.Op {
	case OpConcat:
		fmt.Fprintf(b, "(concat%s", rtl)
		dumpArgs(b, e.Args)
		b.WriteString(")")
	case OpAlt:
		fmt.Fprintf(b, "(or%s", rtl)
		dumpArgs(b, e.Args)
		b.WriteString(")")
	case OpCapture:
		name := e.CaptureName
		if name == "" {
			name = fmt.Sprintf("<%d>", e.CaptureIndex)
		}
		fmt.Fprintf(b, "(capture%s %s ", rtl, name)
		dump(b, e.Args[0])
		b.WriteString(")")
	case OpRepeat:
		lazy := ""
		if e.Lazy {
			lazy = "?"
		}
		fmt.Fprintf(b, "(repeat%s{%d,%d}%s ", rtl, e.Min, e.Max, lazy)
		dump(b, e.Args[0])
		b.WriteString(")")
	case OpLookaround:
		kind := "require"
		if !e.Positive {
			kind = "prevent"
		}
		fmt.Fprintf(b, "(%s%s ", kind, rtl)
		dump(b, e.Args[0])
		b.WriteString(")")
	case OpAny:
		fmt.Fprintf(b, ".%s", rtl)
	case OpPosition:
		fmt.Fprintf(b, "%s%s", e.Position, rtl)
	case OpRef:
		arrow := "\\"
		if e.RefReversed {
			arrow = "/"
		}
		fmt.Fprintf(b, "%s%d%s", arrow, e.RefIndex, rtl)
	case OpEmpty:
		fmt.Fprintf(b, "empty%s", rtl)
	case OpWord:
		fmt.Fprintf(b, "%q%s", e.Shape, rtl)
	case OpWordSet:
		fmt.Fprintf(b, "[#%s]%s", strings.Join(e.Words, "|"), rtl)
	case OpDynamicWord:
		fmt.Fprintf(b, "%s%s", dumpPredicate(e.Dynamic), rtl)
	case OpDynamicWordSet:
		parts := make([]string, len(e.DynamicSet))
		for i, p := range e.DynamicSet {
			parts[i] = dumpPredicate(p)
		}
		fmt.Fprintf(b, "[%s]%s", strings.Join(parts, ""), rtl)
	case OpSth:
		fmt.Fprintf(b, "Sth(%s)%s", e.SthName, rtl)
	default:
		fmt.Fprintf(b, "<op=%d>", byte(e.Op))
	}
}

func dumpPredicate(p token.Predicate) string {
	s := p.Pos + p.Pos2
	if p.Length != -1 {
		s += fmt.Sprintf("%d", p.Length)
	}
	if p.Struct != "" {
		s += "<#" + p.Struct + ">"
	}
	if p.SemanticTag != "" {
		s += "<" + p.SemanticTag + ">"
	}
	return s
}

func dumpArgs(b *strings.Builder, args []*Expr) {
	for _, a := range args {
		b.WriteString(" ")
		dump(b, a)
	}
}
