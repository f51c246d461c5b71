package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bnucip/wordregex"
	"github.com/bnucip/wordregex/token"
)

// compileAndLoad is the shared match/matchall setup: compile pattern
// (with an optional named-subpattern file) and load the token fixture.
func compileAndLoad(pattern, tokensPath, namedFile string) (*wordregex.Regexp, []token.Token, error) {
	named, err := loadNamed(namedFile)
	if err != nil {
		return nil, nil, err
	}
	re, err := wordregex.Compile(pattern, named)
	if err != nil {
		return nil, nil, fmt.Errorf("compile: %w", err)
	}
	tokens, err := loadTokens(tokensPath)
	if err != nil {
		return nil, nil, err
	}
	return re, tokens, nil
}

// loadTokens reads a YAML token-list fixture: a sequence of mappings with
// shape/pos/pos2/struct/semantic/cixing keys, unmarshaled directly into
// []token.Token (the yaml tags on token.Token do the field mapping).
func loadTokens(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token fixture %s: %w", path, err)
	}
	var tokens []token.Token
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parse token fixture %s: %w", path, err)
	}
	return tokens, nil
}

// loadNamed reads a YAML mapping of subpattern name to pattern text, for
// the --named-file flag shared by compile/match/matchall.
func loadNamed(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read named-subpattern file %s: %w", path, err)
	}
	var named map[string]string
	if err := yaml.Unmarshal(data, &named); err != nil {
		return nil, fmt.Errorf("parse named-subpattern file %s: %w", path, err)
	}
	return named, nil
}
