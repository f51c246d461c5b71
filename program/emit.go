package program

import (
	"fmt"

	"github.com/bnucip/wordregex/syntax"
	"github.com/bnucip/wordregex/wrerr"
)

// builder accumulates instructions with monotonically increasing ids,
// driven by a recursive post-order walk over the AST.
type builder struct {
	codes      []*Code
	groupNames map[int]string
}

func (b *builder) alloc(c *Code) int {
	c.ID = len(b.codes)
	b.codes = append(b.codes, c)
	return c.ID
}

// frag is one node's emitted fragment: entry is the id execution jumps to
// on arrival, out is the list of not-yet-resolved successor slots that
// the caller must point at whatever comes after this fragment succeeds.
type frag struct {
	entry int
	out   []*int
}

func patchAll(slots []*int, target int) {
	for _, s := range slots {
		*s = target
	}
}

// singleSucc gives c a one-element Arg slice and returns a pointer to
// that slot, for instructions with exactly one successor.
func singleSucc(c *Code) *int {
	c.Arg = []int{-1}
	return &c.Arg[0]
}

func patchableSlot(arg []int, sentinel int) *int {
	for i := range arg {
		if arg[i] == sentinel {
			return &arg[i]
		}
	}
	return nil
}

func concatFrags(frags []frag) frag {
	for i := 0; i < len(frags)-1; i++ {
		patchAll(frags[i].out, frags[i+1].entry)
	}
	return frag{entry: frags[0].entry, out: frags[len(frags)-1].out}
}

// Emit walks a rewritten, fully-expanded AST (syntax.Normalize's output)
// and produces a Program. It returns an error if an OpSth node is still
// present (Expand must run first) or a Repeat node's bounds fall outside
// every canonical form the VM supports.
func Emit(root *syntax.Expr) (*Program, error) {
	b := &builder{groupNames: make(map[int]string)}

	lead := &Code{Type: OpAlt}
	b.alloc(lead)

	bodyFrag, err := b.emitNode(root)
	if err != nil {
		return nil, err
	}

	stop := &Code{Type: OpStop, Arg: []int{}}
	stopID := b.alloc(stop)
	patchAll(bodyFrag.out, stopID)
	lead.Arg = []int{bodyFrag.entry, stopID}

	codes := make([]Code, len(b.codes))
	for i, c := range b.codes {
		codes[i] = *c
	}
	return &Program{Codes: codes, GroupNames: b.groupNames}, nil
}

func (b *builder) emitNode(e *syntax.Expr) (frag, error) {
	switch e.Op {
	case syntax.OpConcat:
		frags := make([]frag, 0, len(e.Args))
		for _, a := range e.Args {
			f, err := b.emitNode(a)
			if err != nil {
				return frag{}, err
			}
			frags = append(frags, f)
		}
		if len(frags) == 0 {
			return b.emitNode(&syntax.Expr{Op: syntax.OpEmpty})
		}
		return concatFrags(frags), nil

	case syntax.OpAlt:
		alt := &Code{Type: OpAlt}
		id := b.alloc(alt)
		var args []int
		var outs []*int
		for _, a := range e.Args {
			f, err := b.emitNode(a)
			if err != nil {
				return frag{}, err
			}
			args = append(args, f.entry)
			outs = append(outs, f.out...)
		}
		alt.Arg = args
		return frag{entry: id, out: outs}, nil

	case syntax.OpRepeat:
		return b.emitRepeat(e)

	case syntax.OpCapture:
		if e.CaptureIndex < 0 {
			return b.emitNode(e.Args[0])
		}
		setMark := &Code{Type: OpSetMark}
		setID := b.alloc(setMark)
		bodyFrag, err := b.emitNode(e.Args[0])
		if err != nil {
			return frag{}, err
		}
		setMark.Arg = []int{bodyFrag.entry}

		name := e.CaptureName
		if name == "" {
			name = fmt.Sprintf("<%d>", e.CaptureIndex)
		}
		b.groupNames[e.CaptureIndex] = name

		capMark := &Code{Type: OpCaptureMark, CaptureIndex: e.CaptureIndex, CaptureName: name}
		capID := b.alloc(capMark)
		patchAll(bodyFrag.out, capID)
		out := singleSucc(capMark)
		return frag{entry: setID, out: []*int{out}}, nil

	case syntax.OpLookaround:
		if e.Positive {
			return b.emitLookaheadPositive(e)
		}
		return b.emitLookaheadNegative(e)

	case syntax.OpAny:
		c := &Code{Type: OpAny, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpPosition:
		c := &Code{Type: OpPosition, Position: e.Position, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpRef:
		c := &Code{Type: OpRef, RefIndex: e.RefIndex, RefReversed: e.RefReversed, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpEmpty:
		c := &Code{Type: OpNop, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpWord:
		c := &Code{Type: OpWord, Shape: e.Shape, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpWordSet:
		c := &Code{Type: OpWordSet, Words: e.Words, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpDynamicWord:
		c := &Code{Type: OpDynamicWord, Dynamic: e.Dynamic, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpDynamicWordSet:
		c := &Code{Type: OpDynamicWordSet, DynamicSet: e.DynamicSet, RightToLeft: e.RightToLeft}
		id := b.alloc(c)
		return frag{entry: id, out: []*int{singleSucc(c)}}, nil

	case syntax.OpSth:
		return frag{}, wrerr.Named(wrerr.Emit, e.SthName, "unexpanded named subpattern reached the emitter")

	default:
		return frag{}, wrerr.At(wrerr.Emit, 0, "cannot emit node of kind %s", e.Op)
	}
}

func (b *builder) emitLookaheadPositive(e *syntax.Expr) (frag, error) {
	setJump := &Code{Type: OpSetJump}
	setID := b.alloc(setJump)
	bodyFrag, err := b.emitNode(e.Args[0])
	if err != nil {
		return frag{}, err
	}
	setJump.Arg = []int{bodyFrag.entry}

	fore := &Code{Type: OpForeJump}
	foreID := b.alloc(fore)
	patchAll(bodyFrag.out, foreID)
	out := singleSucc(fore)
	return frag{entry: setID, out: []*int{out}}, nil
}

func (b *builder) emitLookaheadNegative(e *syntax.Expr) (frag, error) {
	setJump := &Code{Type: OpSetJump}
	setID := b.alloc(setJump)

	alt := &Code{Type: OpAlt}
	altID := b.alloc(alt)
	setJump.Arg = []int{altID}

	bodyFrag, err := b.emitNode(e.Args[0])
	if err != nil {
		return frag{}, err
	}
	back := &Code{Type: OpBackJump, Arg: []int{}}
	backID := b.alloc(back)
	patchAll(bodyFrag.out, backID)

	fore := &Code{Type: OpForeJump}
	foreID := b.alloc(fore)
	alt.Arg = []int{bodyFrag.entry, foreID}
	out := singleSucc(fore)
	return frag{entry: setID, out: []*int{out}}, nil
}

// emitRepeat dispatches on the four canonical quantifier forms: star
// (0,unbounded), plus (1,unbounded), optional (0,1), and bounded
// (1<=m<=n<1000). Every other combination, {0,0} and finite {0,n} with
// n>1 included, is an emit error rather than a silent no-op; see
// DESIGN.md.
func (b *builder) emitRepeat(e *syntax.Expr) (frag, error) {
	m, n, lazy := e.Min, e.Max, e.Lazy
	body := e.Args[0]

	switch {
	case m == 0 && n == syntax.Unbounded:
		return b.emitStar(body, lazy)
	case m == 1 && n == syntax.Unbounded:
		return b.emitPlus(body, lazy)
	case m == 0 && n == 1:
		return b.emitQuest(body, lazy)
	case n != syntax.Unbounded && n < 1000 && n >= m && m >= 1:
		return b.emitBounded(body, m, n, lazy)
	default:
		return frag{}, wrerr.At(wrerr.Emit, 0, "unsupported repeat bound {%d,%s}", m, boundDisplay(n))
	}
}

func boundDisplay(n int) string {
	if n == syntax.Unbounded {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func (b *builder) emitStar(body *syntax.Expr, lazy bool) (frag, error) {
	alt := &Code{Type: OpAlt}
	altID := b.alloc(alt)
	bodyFrag, err := b.emitNode(body)
	if err != nil {
		return frag{}, err
	}
	patchAll(bodyFrag.out, altID)
	arg := []int{bodyFrag.entry, -1}
	if lazy {
		arg[0], arg[1] = arg[1], arg[0]
	}
	alt.Arg = arg
	out := patchableSlot(alt.Arg, -1)
	return frag{entry: altID, out: []*int{out}}, nil
}

func (b *builder) emitPlus(body *syntax.Expr, lazy bool) (frag, error) {
	bodyFrag, err := b.emitNode(body)
	if err != nil {
		return frag{}, err
	}
	alt := &Code{Type: OpAlt}
	altID := b.alloc(alt)
	patchAll(bodyFrag.out, altID)
	arg := []int{bodyFrag.entry, -1}
	if lazy {
		arg[0], arg[1] = arg[1], arg[0]
	}
	alt.Arg = arg
	out := patchableSlot(alt.Arg, -1)
	return frag{entry: bodyFrag.entry, out: []*int{out}}, nil
}

func (b *builder) emitQuest(body *syntax.Expr, lazy bool) (frag, error) {
	alt := &Code{Type: OpAlt}
	altID := b.alloc(alt)
	bodyFrag, err := b.emitNode(body)
	if err != nil {
		return frag{}, err
	}
	arg := []int{bodyFrag.entry, -1}
	if lazy {
		arg[0], arg[1] = arg[1], arg[0]
	}
	alt.Arg = arg
	skip := patchableSlot(alt.Arg, -1)
	outs := append([]*int{skip}, bodyFrag.out...)
	return frag{entry: altID, out: outs}, nil
}

func (b *builder) emitBounded(body *syntax.Expr, m, n int, lazy bool) (frag, error) {
	mandatory := make([]frag, m)
	for i := 0; i < m; i++ {
		f, err := b.emitNode(body)
		if err != nil {
			return frag{}, err
		}
		mandatory[i] = f
	}
	required := concatFrags(mandatory)

	if n == m {
		return required, nil
	}

	tail := make([]frag, n-m)
	for i := range tail {
		f, err := b.emitNode(body)
		if err != nil {
			return frag{}, err
		}
		tail[i] = f
	}
	for i := 0; i < len(tail)-1; i++ {
		patchAll(tail[i].out, tail[i+1].entry)
	}

	alt := &Code{Type: OpAlt}
	altID := b.alloc(alt)
	patchAll(required.out, altID)

	arg := make([]int, 0, len(tail)+1)
	for _, f := range tail {
		arg = append(arg, f.entry)
	}
	arg = append(arg, -1)
	if lazy {
		for i, j := 0, len(arg)-1; i < j; i, j = i+1, j-1 {
			arg[i], arg[j] = arg[j], arg[i]
		}
	}
	alt.Arg = arg
	skip := patchableSlot(alt.Arg, -1)
	outs := append([]*int{skip}, tail[len(tail)-1].out...)
	return frag{entry: required.entry, out: outs}, nil
}
