package wordregex

import (
	"context"
	"reflect"
	"testing"

	"github.com/bnucip/wordregex/token"
)

func shapesOf(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, w := range tokens {
		out[i] = w.Shape
	}
	return out
}

// TestFindVerbNounPairs exercises the public Find/FindAll surface with
// "(?<haha>v)n" over a short tagged sentence.
func TestFindVerbNounPairs(t *testing.T) {
	re, err := Compile("(?<haha>v)n", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "1997年", Pos: "t"},
		{Shape: "，", Pos: "w"},
		{Shape: "是", Pos: "v"},
		{Shape: "中国", Pos: "n"},
		{Shape: "发展", Pos: "v"},
		{Shape: "历史", Pos: "n"},
		{Shape: "上", Pos: "f"},
	}

	all := re.FindAll(context.Background(), tokens)
	if len(all) != 2 {
		t.Fatalf("FindAll returned %d matches, want 2", len(all))
	}
	if got := shapesOf(all[0]["haha"]); !reflect.DeepEqual(got, []string{"是"}) {
		t.Errorf("match 0 haha = %v, want [是]", got)
	}
	if got := shapesOf(all[0]["<global>"]); !reflect.DeepEqual(got, []string{"是", "中国"}) {
		t.Errorf("match 0 global = %v, want [是 中国]", got)
	}
	if got := shapesOf(all[1]["haha"]); !reflect.DeepEqual(got, []string{"发展"}) {
		t.Errorf("match 1 haha = %v, want [发展]", got)
	}
	if got := shapesOf(all[1]["<global>"]); !reflect.DeepEqual(got, []string{"发展", "历史"}) {
		t.Errorf("match 1 global = %v, want [发展 历史]", got)
	}

	first, ok := re.Find(context.Background(), tokens)
	if !ok {
		t.Fatal("Find: expected a match")
	}
	if got := shapesOf(first["<global>"]); !reflect.DeepEqual(got, []string{"是", "中国"}) {
		t.Errorf("Find global = %v, want [是 中国]", got)
	}
}

// TestFindNamedSubpatternPlaceholder exercises a space-delimited
// placeholder expanding to an auxiliary pattern.
func TestFindNamedSubpatternPlaceholder(t *testing.T) {
	re, err := Compile(" pred n", map[string]string{"pred": "[va]"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "1997年", Pos: "t"},
		{Shape: "，", Pos: "w"},
		{Shape: "是", Pos: "v"},
		{Shape: "中国", Pos: "n"},
		{Shape: "发展", Pos: "v"},
		{Shape: "历史", Pos: "n"},
		{Shape: "上", Pos: "f"},
	}
	m, ok := re.Find(context.Background(), tokens)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := shapesOf(m["<global>"]); !reflect.DeepEqual(got, []string{"是", "中国"}) {
		t.Errorf("global = %v, want [是 中国]", got)
	}
}

// TestFindMultiCapture exercises a named group and a
// positionally-numbered group populated from the same match.
func TestFindMultiCapture(t *testing.T) {
	re, err := Compile("(?<pred>v)(n)", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "1997年", Pos: "t"},
		{Shape: "，", Pos: "w"},
		{Shape: "是", Pos: "v"},
		{Shape: "中国", Pos: "n"},
	}
	m, ok := re.Find(context.Background(), tokens)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := shapesOf(m["pred"]); !reflect.DeepEqual(got, []string{"是"}) {
		t.Errorf("pred = %v, want [是]", got)
	}
	if got := shapesOf(m["<2>"]); !reflect.DeepEqual(got, []string{"中国"}) {
		t.Errorf("<2> = %v, want [中国]", got)
	}
}

// TestFindAllLazyBoundedRepeat: "a{2,3}?" over four identical tokens
// finds matches at offsets 0, 1, 2, each consuming exactly the lazy
// minimum of two tokens.
func TestFindAllLazyBoundedRepeat(t *testing.T) {
	re, err := Compile("a{2,3}?", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "a", Pos: "a"},
		{Shape: "a", Pos: "a"},
		{Shape: "a", Pos: "a"},
		{Shape: "a", Pos: "a"},
	}
	all := re.FindAll(context.Background(), tokens)
	if len(all) != 3 {
		t.Fatalf("FindAll returned %d matches, want 3", len(all))
	}
	for i, m := range all {
		if got := len(m["<global>"]); got != 2 {
			t.Errorf("match %d global has %d tokens, want 2", i, got)
		}
	}
}

// TestFindForwardBackreference runs "(n)\1" over a repeated noun
// followed by a distinct one.
func TestFindForwardBackreference(t *testing.T) {
	re, err := Compile("(n)\\1", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "中国", Pos: "n"},
		{Shape: "中国", Pos: "n"},
		{Shape: "历史", Pos: "n"},
	}
	m, ok := re.Find(context.Background(), tokens)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := shapesOf(m["<1>"]); !reflect.DeepEqual(got, []string{"中国"}) {
		t.Errorf("<1> = %v, want [中国]", got)
	}
	if got := shapesOf(m["<global>"]); !reflect.DeepEqual(got, []string{"中国", "中国"}) {
		t.Errorf("global = %v, want [中国 中国]", got)
	}
}

// TestFindReversedBackreferenceNoMatch exercises the reversed variant:
// "/1" requires the next tokens to equal the reversed captured span,
// which two structurally distinct tokens never satisfy.
func TestFindReversedBackreferenceNoMatch(t *testing.T) {
	re, err := Compile("(n)/1", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "中国", Pos: "n"},
		{Shape: "国中", Pos: "n"},
	}
	if _, ok := re.Find(context.Background(), tokens); ok {
		t.Error("expected no match for distinct tokens under reversed back-reference")
	}
}

// TestFindSemanticPolarityIsInverted pins the semantic-tag exclusion
// semantics end to end: "<dev>+" never matches tokens whose Semantic
// field contains "dev".
func TestFindSemanticPolarityIsInverted(t *testing.T) {
	re, err := Compile("<dev>+", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "发展", Semantic: "dev"},
		{Shape: "建设", Semantic: "dev"},
	}
	if _, ok := re.Find(context.Background(), tokens); ok {
		t.Error("expected no match: a semantic tag excludes tokens annotated with it")
	}
}

// TestFindAllStartsFromEveryOffset documents that FindAll tries each
// start offset and reports one match per offset that succeeds.
func TestFindAllStartsFromEveryOffset(t *testing.T) {
	re, err := Compile("n", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tokens := []token.Token{
		{Shape: "中国", Pos: "n"},
		{Shape: "历史", Pos: "n"},
	}
	all := re.FindAll(context.Background(), tokens)
	if len(all) != 2 {
		t.Fatalf("FindAll returned %d matches, want 2 (one per token)", len(all))
	}
}

func TestFindContextCancellation(t *testing.T) {
	re, err := Compile("n", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tokens := []token.Token{{Shape: "中国", Pos: "n"}}
	if _, ok := re.Find(ctx, tokens); ok {
		t.Error("expected Find to report no match when the context is already cancelled")
	}
	if all := re.FindAll(ctx, tokens); len(all) != 0 {
		t.Errorf("FindAll with cancelled context returned %d matches, want 0", len(all))
	}
}

func TestGroupNames(t *testing.T) {
	re, err := Compile("(?<pred>v)(n)", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []string{"<global>", "pred", "<2>"}
	if got := re.GroupNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("GroupNames = %v, want %v", got, want)
	}
}

func TestRegexpString(t *testing.T) {
	re, err := Compile("v", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if re.String() == "" {
		t.Error("String() returned empty output")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		named   map[string]string
	}{
		{"unterminated group", "(v", nil},
		{"unmatched close", "v)", nil},
		{"undefined named backref", "\\p<missing>", nil},
		{"undefined placeholder", " missing ", nil},
		{"quantifier min exceeds max", "v{3,1}", nil},
		{"unsupported repeat bound", "v{0,2}", nil},
		{"cyclic named subpattern", " a ", map[string]string{"a": " a "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.pattern, tt.named); err == nil {
				t.Errorf("Compile(%q) succeeded, want an error", tt.pattern)
			}
		})
	}
}
