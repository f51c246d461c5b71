package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bnucip/wordregex"
)

var matchFlags = struct {
	namedFile *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "match <pattern> <tokens.yaml>",
		Short:   "Find the first match of a pattern against a token fixture",
		Example: `  wordregex match '<n><v>' tokens.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE:    runMatch,
	}
	matchFlags.namedFile = cmd.Flags().String("named-file", "", "YAML file of name: pattern subpatterns")
	rootCmd.AddCommand(cmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	re, tokens, err := compileAndLoad(args[0], args[1], *matchFlags.namedFile)
	if err != nil {
		return err
	}

	m, ok := re.Find(context.Background(), tokens)
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no match")
		return nil
	}
	printMatch(cmd, m)
	return nil
}

func printMatch(cmd *cobra.Command, m wordregex.Match) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, m[name])
	}
}
