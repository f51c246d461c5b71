package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wordregex",
	Short: "Compile and run word-token patterns",
	Long: `wordregex compiles a word-token pattern to a program and runs it
against a token stream instead of a character string. It provides three
subcommands:
- compile: parse and dump the AST and compiled program for a pattern.
- match: run the first match of a pattern against a YAML token fixture.
- matchall: run every match of a pattern against a YAML token fixture.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
