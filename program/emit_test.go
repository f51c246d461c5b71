package program

import (
	"testing"

	"github.com/bnucip/wordregex/syntax"
)

func compileToProgram(t *testing.T, pattern string, named map[string]string) *Program {
	t.Helper()
	root, _, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	normalized, err := syntax.Normalize(root, named)
	if err != nil {
		t.Fatalf("normalize %q: %v", pattern, err)
	}
	prog, err := Emit(normalized)
	if err != nil {
		t.Fatalf("emit %q: %v", pattern, err)
	}
	return prog
}

// TestEmitSuccessorsAreInBounds checks that every successor id in every
// emitted Code.Arg points into [0, len(Codes)).
func TestEmitSuccessorsAreInBounds(t *testing.T) {
	patterns := []string{
		"中国", "v|n", "v*", "v+", "v?", "v{2,3}", "v{2,3}?",
		"(v)", "(?<n>v)n", "(?=v)n", "(?!v)n", "(?<=v)n", "(?<!v)n",
		"(n)\\1", "(n)/1", "^v$",
	}
	for _, pat := range patterns {
		prog := compileToProgram(t, pat, nil)
		for _, c := range prog.Codes {
			for _, succ := range c.Arg {
				if succ < 0 || succ >= len(prog.Codes) {
					t.Errorf("%q: code %d (%s) has out-of-range successor %d (len=%d)", pat, c.ID, c.Type, succ, len(prog.Codes))
				}
			}
		}
	}
}

func TestEmitLeadingAltAndTrailingStop(t *testing.T) {
	prog := compileToProgram(t, "v", nil)
	if prog.Codes[0].Type != OpAlt {
		t.Errorf("code 0 = %s, want Alt", prog.Codes[0].Type)
	}
	last := prog.Codes[len(prog.Codes)-1]
	if last.Type != OpStop {
		t.Errorf("last code = %s, want Stop", last.Type)
	}
	if len(prog.Codes[0].Arg) != 2 || prog.Codes[0].Arg[1] != last.ID {
		t.Errorf("lead Alt.Arg = %v, want [body, %d]", prog.Codes[0].Arg, last.ID)
	}
}

func TestEmitGroupNames(t *testing.T) {
	prog := compileToProgram(t, "(?<pred>v)(n)", nil)
	if prog.GroupNames[0] != "<global>" {
		t.Errorf("group 0 name = %q", prog.GroupNames[0])
	}
	if prog.GroupNames[1] != "pred" {
		t.Errorf("group 1 name = %q", prog.GroupNames[1])
	}
	if prog.GroupNames[2] != "<2>" {
		t.Errorf("group 2 name = %q", prog.GroupNames[2])
	}
}

func TestEmitBoundedRepeatEqualsLiteralCopies(t *testing.T) {
	// (X){2,2} is behaviourally equivalent to XX; both should emit the
	// same number of consuming instructions (2 DynamicWord codes) with no
	// Alt branching inside the run.
	bounded := compileToProgram(t, "v{2,2}", nil)
	literal := compileToProgram(t, "vv", nil)

	count := func(p *Program) int {
		n := 0
		for _, c := range p.Codes {
			if c.Type == OpDynamicWord {
				n++
			}
		}
		return n
	}
	if count(bounded) != count(literal) {
		t.Errorf("v{2,2} has %d DynamicWord codes, vv has %d", count(bounded), count(literal))
	}
}

func TestEmitUnexpandedPlaceholderIsError(t *testing.T) {
	root, _, err := syntax.Parse(" pred ")
	if err != nil {
		t.Fatal(err)
	}
	// Deliberately skip Normalize/Expand: an OpSth node must never reach
	// Emit directly.
	if _, err := Emit(root); err == nil {
		t.Error("expected an error emitting an unexpanded OpSth node")
	}
}

func TestEmitUnsupportedRepeatBoundIsError(t *testing.T) {
	// {0,2}: finite n>1 with m==0 falls outside every repeat branch and
	// must be an emit error, not a silent no-op.
	root, _, err := syntax.Parse("v{0,2}")
	if err != nil {
		t.Fatal(err)
	}
	normalized, err := syntax.Normalize(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Emit(normalized); err == nil {
		t.Error("expected an emit error for {0,2}")
	}
}

func TestDump(t *testing.T) {
	prog := compileToProgram(t, "v", nil)
	out := Dump(prog)
	if out == "" {
		t.Error("Dump returned empty output")
	}
}
