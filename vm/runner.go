// Package vm implements the backtracking virtual machine that executes a
// compiled program.Program against a token list.
package vm

import (
	"strings"

	"github.com/bnucip/wordregex/program"
	"github.com/bnucip/wordregex/syntax"
	"github.com/bnucip/wordregex/token"
)

// paramRecord is the paramStack entry shape. SetMark populates codeID
// and wordPos; SetJump populates all four fields.
type paramRecord struct {
	codeID   int
	wordPos  int
	paramLen int
	trackLen int
}

// trackRecord is a backtrack-stack entry. Which fields are meaningful
// depends on codes[codePos].Type: Alt uses wordPos, CaptureMark uses
// capID+param, ForeJump uses param.
type trackRecord struct {
	codePos  int
	backTime int
	wordPos  int
	capID    int
	param    paramRecord
}

// Runner executes one compiled program.Program against one token list
// for one start position. It is not reentrant; concurrent matches need
// independent Runners over the same (immutable, share-safe) Program.
type Runner struct {
	prog   *program.Program
	tokens []token.Token

	codePos            int
	wordStart, wordEnd int
	wordPos            int
	paramStack         []paramRecord
	trackStack         []trackRecord
	matches            map[int][2]int
}

// New builds a Runner bound to a compiled program. The same *Runner may
// be reused across successive Run calls (each resets all mutable state).
func New(prog *program.Program) *Runner {
	return &Runner{prog: prog}
}

// Run attempts a match starting at token index start. It returns the
// capture-index to token-span map on success, or (nil, false) on failure.
// There is no error return: the VM never fails, only reports no-match.
func (r *Runner) Run(tokens []token.Token, start int) (map[int][2]int, bool) {
	r.tokens = tokens
	r.wordStart = start
	r.wordEnd = len(tokens)
	r.wordPos = start
	r.paramStack = r.paramStack[:0]
	r.trackStack = r.trackStack[:0]
	r.matches = make(map[int][2]int)

	if !r.execute() || len(r.matches) == 0 {
		return nil, false
	}
	return r.matches, true
}

func (r *Runner) execute() bool {
	r.codePos = 0
	for {
		if r.codePos < 0 || r.codePos >= len(r.prog.Codes) {
			return false
		}
		c := &r.prog.Codes[r.codePos]

		switch c.Type {
		case program.OpStop:
			return true

		case program.OpNop:
			r.codePos = c.Arg[0]

		case program.OpAlt:
			r.trackStack = append(r.trackStack, trackRecord{codePos: r.codePos, wordPos: r.wordPos})
			r.codePos = c.Arg[0]

		case program.OpSetMark:
			r.paramStack = append(r.paramStack, paramRecord{codeID: c.ID, wordPos: r.wordPos})
			r.trackStack = append(r.trackStack, trackRecord{codePos: r.codePos})
			r.codePos = c.Arg[0]

		case program.OpCaptureMark:
			p := r.paramPop()
			r.matches[c.CaptureIndex] = [2]int{p.wordPos, r.wordPos}
			r.trackStack = append(r.trackStack, trackRecord{codePos: r.codePos, capID: c.CaptureIndex, param: p})
			r.codePos = c.Arg[0]

		case program.OpSetJump:
			p := paramRecord{codeID: c.ID, paramLen: len(r.paramStack), trackLen: len(r.trackStack), wordPos: r.wordPos}
			r.paramStack = append(r.paramStack, p)
			r.trackStack = append(r.trackStack, trackRecord{codePos: r.codePos})
			r.codePos = c.Arg[0]

		case program.OpGetJump:
			p := r.paramPop()
			r.paramStack = r.paramStack[:p.paramLen]
			r.trackStack = r.trackStack[:p.trackLen]
			r.wordPos = p.wordPos
			r.codePos = c.Arg[0]

		case program.OpForeJump:
			p := r.paramPop()
			r.paramStack = r.paramStack[:p.paramLen]
			r.trackStack = r.trackStack[:p.trackLen]
			r.wordPos = p.wordPos
			r.trackStack = append(r.trackStack, trackRecord{codePos: r.codePos, param: p})
			r.codePos = c.Arg[0]

		case program.OpBackJump:
			p := r.paramPop()
			r.paramStack = r.paramStack[:p.paramLen]
			r.trackStack = r.trackStack[:p.trackLen]
			r.wordPos = p.wordPos
			if !r.backtrack() {
				return false
			}

		case program.OpWord:
			if r.matchWord(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpWordSet:
			if r.matchWordSet(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpDynamicWord:
			if r.matchDynamicWord(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpDynamicWordSet:
			if r.matchDynamicWordSet(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpAny:
			if r.matchAny(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpPosition:
			if r.matchPosition(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		case program.OpRef:
			if r.matchRef(c) {
				r.codePos = c.Arg[0]
			} else if !r.backtrack() {
				return false
			}

		default:
			return false
		}
	}
}

func (r *Runner) paramPop() paramRecord {
	n := len(r.paramStack) - 1
	p := r.paramStack[n]
	r.paramStack = r.paramStack[:n]
	return p
}

// backtrack unwinds trackStack until it finds an Alt with an untried
// branch (returns true, having repositioned codePos/wordPos there) or the
// stack empties (returns false: the whole attempt has failed).
func (r *Runner) backtrack() bool {
	for len(r.trackStack) > 0 {
		n := len(r.trackStack) - 1
		rec := r.trackStack[n]
		r.trackStack = r.trackStack[:n]
		rec.backTime++

		c := &r.prog.Codes[rec.codePos]
		switch c.Type {
		case program.OpAlt:
			r.wordPos = rec.wordPos
			if rec.backTime >= len(c.Arg) {
				continue
			}
			r.trackStack = append(r.trackStack, trackRecord{codePos: rec.codePos, backTime: rec.backTime, wordPos: r.wordPos})
			r.codePos = c.Arg[rec.backTime]
			return true

		case program.OpSetMark:
			r.paramPop()

		case program.OpCaptureMark:
			r.paramStack = append(r.paramStack, rec.param)
			delete(r.matches, rec.capID)

		case program.OpSetJump:
			r.paramPop()

		case program.OpForeJump:
			r.paramStack = append(r.paramStack, rec.param)
		}
	}
	return false
}

func (r *Runner) matchWord(c *program.Code) bool {
	shape := c.Shape
	if c.RightToLeft {
		if r.wordPos <= 0 {
			return false
		}
		pos := r.wordPos
		for shape != "" && pos > 0 {
			pos--
			w := r.tokens[pos].Shape
			if w == "" || !strings.HasPrefix(shape, w) {
				return false
			}
			shape = shape[len(w):]
		}
		if shape != "" {
			return false
		}
		r.wordPos = pos
		return true
	}
	if r.wordPos >= r.wordEnd {
		return false
	}
	pos := r.wordPos
	for shape != "" && pos < r.wordEnd {
		w := r.tokens[pos].Shape
		pos++
		if w == "" || !strings.HasPrefix(shape, w) {
			return false
		}
		shape = shape[len(w):]
	}
	if shape != "" {
		return false
	}
	r.wordPos = pos
	return true
}

func (r *Runner) matchWordSet(c *program.Code) bool {
	if c.RightToLeft {
		if r.wordPos <= 0 {
			return false
		}
		for _, w := range c.Words {
			if pos, ok := r.tryWordBackward(w, r.wordPos); ok {
				r.wordPos = pos
				return true
			}
		}
		return false
	}
	if r.wordPos >= r.wordEnd {
		return false
	}
	for _, w := range c.Words {
		if pos, ok := r.tryWordForward(w, r.wordPos); ok {
			r.wordPos = pos
			return true
		}
	}
	return false
}

func (r *Runner) tryWordForward(shape string, start int) (int, bool) {
	pos := start
	for shape != "" && pos < r.wordEnd {
		w := r.tokens[pos].Shape
		pos++
		if w == "" || !strings.HasPrefix(shape, w) {
			return 0, false
		}
		shape = shape[len(w):]
	}
	if shape != "" {
		return 0, false
	}
	return pos, true
}

func (r *Runner) tryWordBackward(shape string, start int) (int, bool) {
	pos := start
	for shape != "" && pos > 0 {
		pos--
		w := r.tokens[pos].Shape
		if w == "" || !strings.HasPrefix(shape, w) {
			return 0, false
		}
		shape = shape[len(w):]
	}
	if shape != "" {
		return 0, false
	}
	return pos, true
}

func (r *Runner) matchDynamicWord(c *program.Code) bool {
	if c.RightToLeft {
		if r.wordPos <= 0 {
			return false
		}
		if !token.Matches(c.Dynamic, r.tokens[r.wordPos-1]) {
			return false
		}
		r.wordPos--
		return true
	}
	if r.wordPos >= r.wordEnd {
		return false
	}
	if !token.Matches(c.Dynamic, r.tokens[r.wordPos]) {
		return false
	}
	r.wordPos++
	return true
}

func (r *Runner) matchDynamicWordSet(c *program.Code) bool {
	if c.RightToLeft {
		if r.wordPos <= 0 {
			return false
		}
		w := r.tokens[r.wordPos-1]
		for _, pred := range c.DynamicSet {
			if token.Matches(pred, w) {
				r.wordPos--
				return true
			}
		}
		return false
	}
	if r.wordPos >= r.wordEnd {
		return false
	}
	w := r.tokens[r.wordPos]
	for _, pred := range c.DynamicSet {
		if token.Matches(pred, w) {
			r.wordPos++
			return true
		}
	}
	return false
}

func (r *Runner) matchAny(c *program.Code) bool {
	if c.RightToLeft {
		if r.wordPos <= 0 {
			return false
		}
		r.wordPos--
		return true
	}
	if r.wordPos >= r.wordEnd {
		return false
	}
	r.wordPos++
	return true
}

func (r *Runner) matchPosition(c *program.Code) bool {
	if r.wordPos > r.wordEnd {
		return false
	}
	switch c.Position {
	case syntax.BeginLine:
		if r.wordPos == r.wordEnd {
			return false
		}
		if r.wordPos == 0 {
			return true
		}
		return r.tokens[r.wordPos-1].IsLineBreak()
	case syntax.EndLine:
		if r.wordPos == r.wordEnd {
			return true
		}
		return r.tokens[r.wordPos].IsLineBreak()
	default:
		return false
	}
}

// matchRef matches against a previously captured span. The live-stream
// cursor (pos) is incremented unconditionally every iteration, even when
// walking the captured span back-to-front; that asymmetry is load-bearing
// for reversed references (see DESIGN.md).
func (r *Runner) matchRef(c *program.Code) bool {
	span, ok := r.matches[c.RefIndex]
	if !ok {
		return false
	}
	mStart, mEnd := span[0], span[1]
	l := mEnd - mStart

	var pos int
	if !c.RightToLeft {
		if l > r.wordEnd-r.wordPos {
			return false
		}
		pos = r.wordPos
	} else {
		if l > r.wordPos {
			return false
		}
		pos = r.wordPos - l
	}

	step := 1
	start, end := mStart, mEnd
	if c.RefReversed {
		step = -1
		start, end = mEnd-1, mStart-1
	}
	for mi := start; mi != end; mi += step {
		oldW := r.tokens[mi]
		newW := r.tokens[pos]
		pos++
		if oldW != newW {
			return false
		}
	}
	r.wordPos = pos
	return true
}
