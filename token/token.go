// Package token defines the input alphabet that the wordregex engine
// matches over: structured word records instead of characters.
package token

import (
	"strings"
	"unicode/utf8"
)

// Token is one word in the input stream. All fields are optional; an
// absent field is represented by its zero value and is simply ignored by
// every predicate that doesn't ask for it.
//
// Token must stay a plain comparable struct (no slices, maps, or
// pointers): back-reference matching compares tokens with ==.
type Token struct {
	Shape    string `yaml:"shape"`
	Pos      string `yaml:"pos"`
	Pos2     string `yaml:"pos2"`
	Struct   string `yaml:"struct"`
	Semantic string `yaml:"semantic"`
	Cixing   string `yaml:"cixing"`
}

// IsLineBreak reports whether t is a line-break marker token. Only the
// cixing field participates; the ^/$ anchors consult nothing else.
func (t Token) IsLineBreak() bool {
	return t.Cixing == "\n"
}

// Predicate is the set of constraints a DynamicWord / DynamicWordSet AST
// leaf carries. It is declared here, alongside Token, because Matches is
// the only place that needs to know both types, and keeping the predicate
// shape in the token package lets syntax and vm both depend on it without
// depending on each other.
type Predicate struct {
	Pos         string
	Pos2        string
	Length      int // -1 means "unconstrained"
	Struct      string
	SemanticTag string
}

// Matches evaluates a dynamic word predicate against a token. The tests
// are conjunctive: every set field must pass.
//
// Note the SemanticTag polarity: a set SemanticTag REJECTS a token whose
// Semantic field contains it as a substring. <tag> therefore matches
// words not annotated with tag, which is the historical behavior callers
// depend on; see DESIGN.md before changing it.
func Matches(p Predicate, w Token) bool {
	if p.Pos2 != "" {
		combined := p.Pos + p.Pos2
		if !strings.Contains(w.Pos2, combined) {
			return false
		}
	}
	if p.Pos != "" && !strings.Contains(w.Pos, p.Pos) {
		return false
	}
	if p.Length != -1 && p.Length != utf8.RuneCountInString(w.Shape) {
		return false
	}
	if p.Struct != "" && p.Struct != w.Struct {
		return false
	}
	if p.SemanticTag != "" && strings.Contains(w.Semantic, p.SemanticTag) {
		return false
	}
	return true
}
