package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its combined output.
// Flag values persist on the package-level commands between Execute calls,
// so each run resets the shared --named-file flags first.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	*compileFlags.namedFile = ""
	*matchFlags.namedFile = ""
	*matchallFlags.namedFile = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("wordregex %s: %v", strings.Join(args, " "), err)
	}
	return buf.String()
}

func TestMatchCommand(t *testing.T) {
	out := execute(t, "match", "(?<haha>v)n", filepath.Join("testdata", "sentence.yaml"))
	if !strings.Contains(out, "haha") {
		t.Errorf("output missing the named group:\n%s", out)
	}
	if !strings.Contains(out, "是") || !strings.Contains(out, "中国") {
		t.Errorf("output missing the matched shapes:\n%s", out)
	}
}

func TestMatchCommandNoMatch(t *testing.T) {
	out := execute(t, "match", "<dev>+", filepath.Join("testdata", "semantic.yaml"))
	if !strings.Contains(out, "no match") {
		t.Errorf("expected \"no match\" for tokens all tagged dev, got:\n%s", out)
	}
}

func TestMatchCommandNamedFile(t *testing.T) {
	out := execute(t, "match", " pred n", filepath.Join("testdata", "sentence.yaml"),
		"--named-file", filepath.Join("testdata", "named.yaml"))
	if !strings.Contains(out, "是") || !strings.Contains(out, "中国") {
		t.Errorf("output missing the matched shapes:\n%s", out)
	}
}

func TestMatchAllCommand(t *testing.T) {
	out := execute(t, "matchall", "a{2,3}?", filepath.Join("testdata", "repeated_a.yaml"))
	if got := strings.Count(out, "match "); got != 3 {
		t.Errorf("expected 3 matches, got %d:\n%s", got, out)
	}
}

func TestMatchAllCommandBackreference(t *testing.T) {
	out := execute(t, "matchall", `(n)\1`, filepath.Join("testdata", "backref.yaml"))
	if got := strings.Count(out, "match "); got != 1 {
		t.Errorf("expected 1 match, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "中国") {
		t.Errorf("output missing the captured shape:\n%s", out)
	}
}

func TestCompileCommand(t *testing.T) {
	out := execute(t, "compile", "(?<pred>v)(n)")
	if !strings.Contains(out, "AST:") || !strings.Contains(out, "Program:") {
		t.Errorf("compile output missing sections:\n%s", out)
	}
	if !strings.Contains(out, "Stop") {
		t.Errorf("program listing missing the Stop instruction:\n%s", out)
	}
}

func TestLoadTokens(t *testing.T) {
	tokens, err := loadTokens(filepath.Join("testdata", "sentence.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 7 {
		t.Fatalf("loaded %d tokens, want 7", len(tokens))
	}
	if tokens[2].Shape != "是" || tokens[2].Pos != "v" {
		t.Errorf("tokens[2] = %+v", tokens[2])
	}
}

func TestLoadTokensMissingFile(t *testing.T) {
	if _, err := loadTokens(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Error("expected an error for a missing fixture")
	}
}

func TestLoadNamed(t *testing.T) {
	named, err := loadNamed(filepath.Join("testdata", "named.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if named["pred"] != "[va]" {
		t.Errorf("named[pred] = %q, want [va]", named["pred"])
	}

	empty, err := loadNamed("")
	if err != nil || empty != nil {
		t.Errorf("loadNamed(\"\") = %v, %v; want nil, nil", empty, err)
	}
}
