package syntax

import (
	"github.com/bnucip/wordregex/wrerr"
)

// Unbounded marks an open-ended Repeat upper bound ('+', '*', '{m,}').
const Unbounded = -1

// Parser is the stack-machine surface parser: a single pass over the
// pattern that pushes real nodes and transient LeftParen/VerticalBar
// markers onto a node stack, collapsing runs of the stack into Concat/Alt
// nodes at '|', ')', and end of input.
type Parser struct {
	s          *scanner
	stack      []*Expr
	autoCap    int
	namedIndex map[string]int
	groupNames map[int]string
}

// Parse compiles a pattern string into an AST plus the group-index to
// group-name table the rewriter and emitter both need. It produces no
// OpSth expansion and no simplification — that is rewrite.go's job.
func Parse(pattern string) (*Expr, map[int]string, error) {
	p := &Parser{
		s:          newScanner(pattern),
		namedIndex: make(map[string]int),
		groupNames: map[int]string{0: "<global>"},
	}

	for !p.s.eof() {
		c := p.s.peek()
		var err error
		switch {
		case c == '^':
			p.s.pos++
			p.stack = append(p.stack, &Expr{Op: OpPosition, Position: BeginLine})
		case c == '$':
			p.s.pos++
			p.stack = append(p.stack, &Expr{Op: OpPosition, Position: EndLine})
		case c == '.':
			p.s.pos++
			p.stack = append(p.stack, &Expr{Op: OpAny})
		case c == '(':
			err = p.parseGroupOpen()
		case c == '|':
			p.collapseConcat()
			p.stack = append(p.stack, &Expr{Op: opVerticalBar})
			p.s.pos++
		case c == ')':
			p.s.pos++
			err = p.parseGroupClose()
		case c == '?' || c == '+' || c == '*' || c == '{':
			err = p.parseQuant()
		case c == '\\' || c == '/':
			err = p.parseBackref()
		case c == ' ':
			err = p.parsePlaceholder()
		default:
			e, scanErr := p.s.scanWordNode()
			if scanErr != nil {
				err = scanErr
			} else if e == nil {
				err = wrerr.At(wrerr.Parse, p.s.pos, "unexpected character %q", c)
			} else {
				p.stack = append(p.stack, e)
			}
		}
		if err != nil {
			return nil, nil, err
		}
	}

	root, err := p.finish()
	if err != nil {
		return nil, nil, err
	}
	return root, p.groupNames, nil
}

func (p *Parser) pop() *Expr {
	n := len(p.stack) - 1
	e := p.stack[n]
	p.stack = p.stack[:n]
	return e
}

func isMarker(e *Expr) bool {
	return e.Op == opLeftParen || e.Op == opVerticalBar
}

func buildConcat(seg []*Expr) *Expr {
	switch len(seg) {
	case 0:
		return &Expr{Op: OpEmpty}
	case 1:
		return seg[0]
	default:
		return &Expr{Op: OpConcat, Args: seg}
	}
}

func altOrSingle(branches []*Expr) *Expr {
	if len(branches) == 1 {
		return branches[0]
	}
	return &Expr{Op: OpAlt, Args: branches}
}

func reverseExprs(s []*Expr) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// collapseConcat folds every node pushed since the nearest marker (or the
// bottom of the stack) into a single Concat node, replacing that run in
// place. Called at '|', at ')', and once more at end of input.
func (p *Parser) collapseConcat() {
	i := len(p.stack)
	for i > 0 && !isMarker(p.stack[i-1]) {
		i--
	}
	seg := append([]*Expr(nil), p.stack[i:]...)
	p.stack = append(p.stack[:i], buildConcat(seg))
}

func (p *Parser) parseGroupOpen() error {
	open := p.s.pos
	p.s.pos++ // consume '('
	kind := parenCapture
	name := ""

	if p.s.peek() == '?' {
		p.s.pos++
		switch p.s.peek() {
		case ':':
			p.s.pos++
			kind = parenNonCapture
		case '=':
			p.s.pos++
			kind = parenLookaheadPos
		case '!':
			p.s.pos++
			kind = parenLookaheadNeg
		case '<':
			p.s.pos++
			switch p.s.peek() {
			case '=':
				p.s.pos++
				kind = parenLookbehindPos
			case '!':
				p.s.pos++
				kind = parenLookbehindNeg
			default:
				var ok bool
				name, ok = p.s.scanName()
				if !ok {
					return wrerr.At(wrerr.Parse, open, "expected group name after '(?<'")
				}
				if p.s.peek() != '>' {
					return wrerr.At(wrerr.Parse, open, "unterminated group name")
				}
				p.s.pos++
				kind = parenNamedCapture
			}
		default:
			return wrerr.At(wrerr.Parse, open, "unknown group flavour '(?%c'", p.s.peek())
		}
	}

	marker := &Expr{Op: opLeftParen, ParenKind: kind}
	switch kind {
	case parenCapture:
		p.autoCap++
		marker.CaptureIndex = p.autoCap
	case parenNamedCapture:
		p.autoCap++
		marker.CaptureIndex = p.autoCap
		marker.CaptureName = name
		if _, dup := p.namedIndex[name]; dup {
			return wrerr.Named(wrerr.Parse, name, "duplicate capture group name")
		}
		p.namedIndex[name] = p.autoCap
		p.groupNames[p.autoCap] = name
	}
	p.stack = append(p.stack, marker)
	return nil
}

func (p *Parser) parseGroupClose() error {
	p.collapseConcat()
	if len(p.stack) == 0 {
		return wrerr.At(wrerr.Parse, p.s.pos, "unmatched ')'")
	}
	branches := []*Expr{p.pop()}
	for {
		if len(p.stack) == 0 {
			return wrerr.At(wrerr.Parse, p.s.pos, "unmatched ')'")
		}
		top := p.stack[len(p.stack)-1]
		if top.Op == opVerticalBar {
			p.pop()
			if len(p.stack) == 0 {
				return wrerr.At(wrerr.Parse, p.s.pos, "unmatched ')'")
			}
			branches = append(branches, p.pop())
			continue
		}
		if top.Op == opLeftParen {
			break
		}
		return wrerr.At(wrerr.Parse, p.s.pos, "malformed group")
	}
	marker := p.pop()
	reverseExprs(branches)
	body := altOrSingle(branches)
	node, err := buildGroupNode(marker, body)
	if err != nil {
		return err
	}
	p.stack = append(p.stack, node)
	return nil
}

func buildGroupNode(marker, body *Expr) (*Expr, error) {
	switch marker.ParenKind {
	case parenCapture:
		return &Expr{Op: OpCapture, Args: []*Expr{body}, CaptureIndex: marker.CaptureIndex}, nil
	case parenNamedCapture:
		return &Expr{Op: OpCapture, Args: []*Expr{body}, CaptureIndex: marker.CaptureIndex, CaptureName: marker.CaptureName}, nil
	case parenNonCapture:
		return body, nil
	case parenLookaheadPos:
		return &Expr{Op: OpLookaround, Args: []*Expr{body}, Positive: true}, nil
	case parenLookaheadNeg:
		return &Expr{Op: OpLookaround, Args: []*Expr{body}, Positive: false}, nil
	case parenLookbehindPos:
		return &Expr{Op: OpLookaround, Args: []*Expr{body}, Positive: true, RightToLeft: true}, nil
	case parenLookbehindNeg:
		return &Expr{Op: OpLookaround, Args: []*Expr{body}, Positive: false, RightToLeft: true}, nil
	default:
		return nil, wrerr.At(wrerr.Parse, 0, "unknown group kind")
	}
}

// parseQuant handles '?' '+' '*' '{m[,[n]]}' plus a trailing '?' for
// lazy. The bound check here is only m<=n; the n>=1000 ceiling is
// enforced at emit time (see program.Emit).
func (p *Parser) parseQuant() error {
	open := p.s.pos
	var min, max int

	switch p.s.peek() {
	case '?':
		p.s.pos++
		min, max = 0, 1
	case '+':
		p.s.pos++
		min, max = 1, Unbounded
	case '*':
		p.s.pos++
		min, max = 0, Unbounded
	case '{':
		p.s.pos++
		m, ok := p.s.scanNumber()
		if !ok {
			return wrerr.At(wrerr.Parse, open, "malformed quantifier")
		}
		min = m
		switch p.s.peek() {
		case '}':
			p.s.pos++
			max = m
		case ',':
			p.s.pos++
			if p.s.peek() == '}' {
				p.s.pos++
				max = Unbounded
			} else {
				n, ok := p.s.scanNumber()
				if !ok {
					return wrerr.At(wrerr.Parse, open, "malformed quantifier")
				}
				if p.s.peek() != '}' {
					return wrerr.At(wrerr.Parse, open, "unterminated quantifier")
				}
				p.s.pos++
				max = n
			}
		default:
			return wrerr.At(wrerr.Parse, open, "unterminated quantifier")
		}
	}

	if max != Unbounded && min > max {
		return wrerr.At(wrerr.Parse, open, "quantifier min %d exceeds max %d", min, max)
	}

	lazy := false
	if p.s.peek() == '?' {
		p.s.pos++
		lazy = true
	}
	return p.applyQuant(min, max, lazy, open)
}

func (p *Parser) applyQuant(min, max int, lazy bool, pos int) error {
	if len(p.stack) == 0 || isMarker(p.stack[len(p.stack)-1]) {
		return wrerr.At(wrerr.Parse, pos, "quantifier with nothing to repeat")
	}
	top := p.pop()
	p.stack = append(p.stack, &Expr{Op: OpRepeat, Args: []*Expr{top}, Min: min, Max: max, Lazy: lazy})
	return nil
}

// parseBackref handles '\N', '\p<name>' (forward) and '/N', '/p<name>'
// (reversed).
func (p *Parser) parseBackref() error {
	open := p.s.pos
	reversed := p.s.peek() == '/'
	p.s.pos++ // consume '\' or '/'

	if p.s.peek() == 'p' && p.s.peekAt(1) == '<' {
		p.s.pos += 2
		name, ok := p.s.scanName()
		if !ok {
			return wrerr.At(wrerr.Parse, open, "expected name after '\\p<'")
		}
		if p.s.peek() != '>' {
			return wrerr.At(wrerr.Parse, open, "unterminated named back-reference")
		}
		p.s.pos++
		idx, ok := p.namedIndex[name]
		if !ok {
			return wrerr.Named(wrerr.Parse, name, "undefined named back-reference")
		}
		p.stack = append(p.stack, &Expr{Op: OpRef, RefIndex: idx, RefReversed: reversed})
		return nil
	}

	num, ok := p.s.scanNumber()
	if !ok {
		return wrerr.At(wrerr.Parse, open, "unknown escape")
	}
	if num < 1 || num > p.autoCap {
		return wrerr.At(wrerr.Parse, open, "back-reference to undefined group %d", num)
	}
	p.stack = append(p.stack, &Expr{Op: OpRef, RefIndex: num, RefReversed: reversed})
	return nil
}

// parsePlaceholder handles ' name ' — a space-delimited identifier
// referring to a named subpattern, expanded later by rewrite.go's Expand.
func (p *Parser) parsePlaceholder() error {
	open := p.s.pos
	p.s.pos++ // consume leading ' '
	name, ok := p.s.scanName()
	if !ok {
		return wrerr.At(wrerr.Parse, open, "expected placeholder name after ' '")
	}
	if p.s.peek() != ' ' {
		return wrerr.At(wrerr.Parse, open, "unterminated placeholder, expected trailing ' '")
	}
	p.s.pos++ // consume trailing ' '
	p.stack = append(p.stack, &Expr{Op: OpSth, SthName: name})
	return nil
}

// finish collapses whatever remains on the stack once input is exhausted:
// a final concat run, then (if '|' markers remain at top level) a final
// alternation. Any leftover LeftParen marker means an unterminated group.
func (p *Parser) finish() (*Expr, error) {
	p.collapseConcat()

	for _, e := range p.stack {
		if e.Op == opLeftParen {
			return nil, wrerr.At(wrerr.Parse, len(p.s.src), "unterminated group")
		}
	}

	if len(p.stack) == 0 {
		return &Expr{Op: OpEmpty}, nil
	}
	if len(p.stack) == 1 {
		return p.stack[0], nil
	}

	branches := []*Expr{p.pop()}
	for len(p.stack) > 0 {
		bar := p.pop()
		if bar.Op != opVerticalBar {
			return nil, wrerr.At(wrerr.Parse, len(p.s.src), "malformed alternation")
		}
		if len(p.stack) == 0 {
			return nil, wrerr.At(wrerr.Parse, len(p.s.src), "malformed alternation")
		}
		branches = append(branches, p.pop())
	}
	reverseExprs(branches)
	return altOrSingle(branches), nil
}
