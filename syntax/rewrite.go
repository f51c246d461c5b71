package syntax

import (
	"github.com/bnucip/wordregex/token"
	"github.com/bnucip/wordregex/wrerr"
)

// Normalize runs the full rewrite pipeline over a freshly parsed tree:
// placeholder expansion, simplification, lookbehind-subtree reversal, and
// finally wrapping the result in the synthetic global capture group.
func Normalize(root *Expr, named map[string]string) (*Expr, error) {
	expanded, err := Expand(root, named)
	if err != nil {
		return nil, err
	}
	simplified := Simplify(expanded)
	reversed := ReverseLookbehind(simplified)
	return &Expr{Op: OpCapture, CaptureIndex: 0, CaptureName: "<global>", Args: []*Expr{reversed}}, nil
}

// cloneExpr deep-copies e, since the same named-subpattern expansion may
// be spliced into the tree at more than one OpSth use site and the later
// Simplify/ReverseLookbehind passes mutate (via replacement, not in-place
// writes) structurally — sharing a subtree across use sites would let one
// site's rewrite bleed into another's.
func cloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Args != nil {
		clone.Args = make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			clone.Args[i] = cloneExpr(a)
		}
	}
	if e.Words != nil {
		clone.Words = append([]string(nil), e.Words...)
	}
	if e.DynamicSet != nil {
		clone.DynamicSet = append([]token.Predicate(nil), e.DynamicSet...)
	}
	return &clone
}

// expander carries Expand's state: the raw named-pattern map, a cache of
// already-expanded subtrees keyed by name (parsed and expanded exactly
// once per name), and the set of names currently being expanded, which is
// the cycle guard.
type expander struct {
	named    map[string]string
	cache    map[string]*Expr
	visiting map[string]bool
}

// Expand replaces every OpSth node with the compiled-and-expanded tree of
// its named subpattern. A name absent from named is an Expand-phase
// error; a name that is its own (transitive) ancestor is rejected as a
// cycle rather than left to recurse forever.
func Expand(root *Expr, named map[string]string) (*Expr, error) {
	ex := &expander{
		named:    named,
		cache:    make(map[string]*Expr),
		visiting: make(map[string]bool),
	}
	return ex.walk(root)
}

func (ex *expander) walk(e *Expr) (*Expr, error) {
	if e == nil {
		return nil, nil
	}
	if e.Op == OpSth {
		return ex.expandName(e.SthName)
	}
	if len(e.Args) == 0 {
		return e, nil
	}
	args := make([]*Expr, len(e.Args))
	for i, a := range e.Args {
		na, err := ex.walk(a)
		if err != nil {
			return nil, err
		}
		args[i] = na
	}
	clone := *e
	clone.Args = args
	return &clone, nil
}

func (ex *expander) expandName(name string) (*Expr, error) {
	if ex.visiting[name] {
		return nil, wrerr.Named(wrerr.Expand, name, "cyclic named subpattern expansion")
	}
	if cached, ok := ex.cache[name]; ok {
		return cloneExpr(cached), nil
	}
	pattern, ok := ex.named[name]
	if !ok {
		return nil, wrerr.Named(wrerr.Expand, name, "undefined named subpattern")
	}

	ex.visiting[name] = true
	sub, _, err := Parse(pattern)
	if err != nil {
		delete(ex.visiting, name)
		return nil, err
	}
	expanded, err := ex.walk(sub)
	delete(ex.visiting, name)
	if err != nil {
		return nil, err
	}
	ex.cache[name] = expanded
	return cloneExpr(expanded), nil
}

// Simplify normalizes the tree bottom-up: flatten Alt-in-Alt and
// Concat-in-Concat, drop empty WordSet/DynamicWordSet children, keep at
// most one Empty child (moved to the end of the child list), fuse
// adjacent same-direction Word children, and collapse any variadic node
// left with exactly one child down to that child. Idempotent: a second
// pass over already-simplified input is a no-op.
func Simplify(e *Expr) *Expr {
	if e == nil {
		return e
	}
	switch e.Op {
	case OpConcat, OpAlt:
		var flat []*Expr
		for _, a := range e.Args {
			sa := Simplify(a)
			if sa.Op == e.Op {
				flat = append(flat, sa.Args...)
			} else {
				flat = append(flat, sa)
			}
		}
		flat = cleanVariadic(flat)
		if len(flat) == 1 {
			return flat[0]
		}
		clone := *e
		clone.Args = flat
		return &clone
	case OpCapture, OpRepeat, OpLookaround:
		clone := *e
		clone.Args = []*Expr{Simplify(e.Args[0])}
		return &clone
	default:
		return e
	}
}

func cleanVariadic(args []*Expr) []*Expr {
	var kept []*Expr
	var empty *Expr
	for _, a := range args {
		switch {
		case a.Op == OpWordSet && len(a.Words) == 0:
			continue
		case a.Op == OpDynamicWordSet && len(a.DynamicSet) == 0:
			continue
		case a.Op == OpEmpty:
			// A single Empty survives, moved to the end of the child
			// list: in an alternation this makes the empty branch the
			// last one tried.
			empty = a
		default:
			kept = append(kept, a)
		}
	}
	if empty != nil {
		kept = append(kept, empty)
	}

	var fused []*Expr
	for _, a := range kept {
		if a.Op == OpWord && len(fused) > 0 {
			last := fused[len(fused)-1]
			if last.Op == OpWord && last.RightToLeft == a.RightToLeft {
				merged := *last
				merged.Shape = last.Shape + a.Shape
				fused[len(fused)-1] = &merged
				continue
			}
		}
		fused = append(fused, a)
	}
	return fused
}

// ReverseLookbehind rewrites lookbehind into reversed-subtree form: every
// OpLookaround node whose RightToLeft is set has its subtree reversed
// (child lists flipped, RightToLeft toggled on every non-Lookaround
// descendant), without touching a nested OpLookaround's own children;
// those are handled independently when the walk reaches them.
func ReverseLookbehind(e *Expr) *Expr {
	if e == nil {
		return e
	}
	if e.Op == OpLookaround && e.RightToLeft {
		clone := *e
		clone.Args = []*Expr{ReverseLookbehind(reverseSubtree(e.Args[0]))}
		return &clone
	}
	if len(e.Args) == 0 {
		return e
	}
	clone := *e
	args := make([]*Expr, len(e.Args))
	for i, a := range e.Args {
		args[i] = ReverseLookbehind(a)
	}
	clone.Args = args
	return &clone
}

// reverseSubtree reverses every child list in e's subtree and toggles
// RightToLeft on every node it touches, stopping at (but not descending
// past) a nested OpLookaround. Applying it twice in a row is the identity
// modulo the flag flips cancelling.
func reverseSubtree(e *Expr) *Expr {
	if e == nil {
		return e
	}
	if e.Op == OpLookaround {
		return e
	}
	clone := *e
	clone.RightToLeft = !e.RightToLeft
	if len(e.Args) > 0 {
		args := make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = reverseSubtree(a)
		}
		for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
			args[i], args[j] = args[j], args[i]
		}
		clone.Args = args
	}
	return &clone
}
