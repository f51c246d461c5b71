package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnucip/wordregex/program"
	"github.com/bnucip/wordregex/syntax"
)

var compileFlags = struct {
	namedFile *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <pattern>",
		Short:   "Parse a pattern and dump its AST and compiled program",
		Example: `  wordregex compile '<n><v>'`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.namedFile = cmd.Flags().String("named-file", "", "YAML file of name: pattern subpatterns")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	pattern := args[0]

	named, err := loadNamed(*compileFlags.namedFile)
	if err != nil {
		return err
	}

	root, _, err := syntax.Parse(pattern)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	normalized, err := syntax.Normalize(root, named)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	prog, err := program.Emit(normalized)
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "AST:")
	fmt.Fprintln(cmd.OutOrStdout(), syntax.Dump(normalized))
	fmt.Fprintln(cmd.OutOrStdout(), "Program:")
	fmt.Fprint(cmd.OutOrStdout(), program.Dump(prog))
	return nil
}
