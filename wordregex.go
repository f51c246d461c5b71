// Package wordregex compiles and runs word-token patterns: a regular
// expression dialect that matches over structured word records (shape,
// part of speech, semantic tag, ...) instead of raw characters.
package wordregex

import (
	"context"
	"sort"
	"strconv"

	"github.com/bnucip/wordregex/program"
	"github.com/bnucip/wordregex/syntax"
	"github.com/bnucip/wordregex/token"
	"github.com/bnucip/wordregex/vm"
)

// Regexp is a compiled pattern. It is immutable once returned by Compile
// and safe to share across goroutines; each Find/FindAll call builds its
// own vm.Runner over it.
type Regexp struct {
	prog    *program.Program
	pattern string
}

// Compile parses pattern, expands any named subpatterns referenced from
// named, rewrites the resulting tree (placeholder expansion,
// simplification, lookbehind reversal), and emits a program. named maps
// a subpattern name to its own pattern text.
func Compile(pattern string, named map[string]string) (*Regexp, error) {
	root, _, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	normalized, err := syntax.Normalize(root, named)
	if err != nil {
		return nil, err
	}
	prog, err := program.Emit(normalized)
	if err != nil {
		return nil, err
	}
	return &Regexp{prog: prog, pattern: pattern}, nil
}

// Match is one successful match: group name (or "<N>" for an unnamed
// numbered group, "<global>" for group 0) to the token span it captured.
type Match map[string][]token.Token

// Find tries successive start offsets 0..len(tokens) and returns the
// match at the first offset that succeeds. It reports false if no start
// offset matches.
func (re *Regexp) Find(ctx context.Context, tokens []token.Token) (Match, bool) {
	r := vm.New(re.prog)
	for i := 0; i <= len(tokens); i++ {
		if err := ctx.Err(); err != nil {
			return nil, false
		}
		if spans, ok := r.Run(tokens, i); ok {
			return re.toMatch(spans, tokens), true
		}
	}
	return nil, false
}

// FindAll tries every start offset 0..len(tokens) and collects a Match
// for each one that succeeds, including offsets inside an earlier
// match's span: it never skips ahead past a match.
func (re *Regexp) FindAll(ctx context.Context, tokens []token.Token) []Match {
	r := vm.New(re.prog)
	var all []Match
	for i := 0; i <= len(tokens); i++ {
		if err := ctx.Err(); err != nil {
			return all
		}
		if spans, ok := r.Run(tokens, i); ok {
			all = append(all, re.toMatch(spans, tokens))
		}
	}
	return all
}

func (re *Regexp) toMatch(spans map[int][2]int, tokens []token.Token) Match {
	m := make(Match, len(spans))
	for idx, span := range spans {
		name := re.prog.GroupNames[idx]
		if name == "" {
			name = groupLabel(idx)
		}
		m[name] = append([]token.Token(nil), tokens[span[0]:span[1]]...)
	}
	return m
}

func groupLabel(idx int) string {
	if idx == 0 {
		return "<global>"
	}
	return "<" + strconv.Itoa(idx) + ">"
}

// GroupNames returns the names of every capturing group in the compiled
// pattern, group 0 ("<global>") first, in ascending index order.
func (re *Regexp) GroupNames() []string {
	indices := make([]int, 0, len(re.prog.GroupNames))
	for idx := range re.prog.GroupNames {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = re.prog.GroupNames[idx]
	}
	return names
}

// String renders the compiled program in the debug listing format of
// program.Dump, for diagnostics and the compile CLI subcommand.
func (re *Regexp) String() string {
	return program.Dump(re.prog)
}
