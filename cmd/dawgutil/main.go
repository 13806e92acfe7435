// Command dawgutil is a thin, flag-parsing-only entry point over the
// dawg/cdawg libraries: build a graph from a token stream, query it, report
// its stats, or dump it for debugging. It intentionally does not tokenize,
// serve HTTP, or score n-grams (see SPEC_FULL.md Non-goals).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dawgutil",
		Short:         "Build and query suffix automata over token streams",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newStatCmd())
	root.AddCommand(newDumpCmd())
	return root
}
