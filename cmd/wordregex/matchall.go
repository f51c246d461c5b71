package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var matchallFlags = struct {
	namedFile *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "matchall <pattern> <tokens.yaml>",
		Short:   "Find every match of a pattern against a token fixture",
		Example: `  wordregex matchall '<n><v>' tokens.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE:    runMatchAll,
	}
	matchallFlags.namedFile = cmd.Flags().String("named-file", "", "YAML file of name: pattern subpatterns")
	rootCmd.AddCommand(cmd)
}

func runMatchAll(cmd *cobra.Command, args []string) error {
	re, tokens, err := compileAndLoad(args[0], args[1], *matchallFlags.namedFile)
	if err != nil {
		return err
	}

	matches := re.FindAll(context.Background(), tokens)
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no match")
		return nil
	}
	for i, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "match %d:\n", i)
		printMatch(cmd, m)
	}
	return nil
}
