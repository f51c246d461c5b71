package token

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		tok  Token
		want bool
	}{
		{
			name: "pos substring matches",
			pred: Predicate{Pos: "v", Length: -1},
			tok:  Token{Pos: "vd"},
			want: true,
		},
		{
			name: "pos mismatch",
			pred: Predicate{Pos: "v", Length: -1},
			tok:  Token{Pos: "n"},
			want: false,
		},
		{
			name: "pos2 combines pos+pos2",
			pred: Predicate{Pos: "v", Pos2: "①", Length: -1},
			tok:  Token{Pos: "v", Pos2: "v①"},
			want: true,
		},
		{
			name: "length constraint",
			pred: Predicate{Length: 2},
			tok:  Token{Shape: "中国"},
			want: true,
		},
		{
			name: "length mismatch",
			pred: Predicate{Length: 2},
			tok:  Token{Shape: "中"},
			want: false,
		},
		{
			name: "struct exact match",
			pred: Predicate{Length: -1, Struct: "NP"},
			tok:  Token{Struct: "NP"},
			want: true,
		},
		{
			name: "struct mismatch",
			pred: Predicate{Length: -1, Struct: "NP"},
			tok:  Token{Struct: "VP"},
			want: false,
		},
		{
			// Pins the SemanticTag polarity: a set tag rejects a token
			// whose Semantic field contains it, rather than requiring it.
			name: "semantic tag present rejects",
			pred: Predicate{Length: -1, SemanticTag: "dev"},
			tok:  Token{Semantic: "dev"},
			want: false,
		},
		{
			name: "semantic tag absent accepts",
			pred: Predicate{Length: -1, SemanticTag: "dev"},
			tok:  Token{Semantic: "politics"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.pred, tt.tok); got != tt.want {
				t.Errorf("Matches(%+v, %+v) = %v, want %v", tt.pred, tt.tok, got, tt.want)
			}
		})
	}
}

func TestIsLineBreak(t *testing.T) {
	if !(Token{Cixing: "\n"}).IsLineBreak() {
		t.Error("expected Cixing \\n to be a line break")
	}
	if (Token{Cixing: "w"}).IsLineBreak() {
		t.Error("expected Cixing w not to be a line break")
	}
}
