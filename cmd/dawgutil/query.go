package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viking-sudo-rm/rusty-dawg/automaton"
	"github.com/viking-sudo-rm/rusty-dawg/cdawg"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawg"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

func newQueryCmd() *cobra.Command {
	var (
		variant    string
		dir        string
		tokenWidth string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "query [token...]",
		Short: "Look up a pattern's longest suffix match, occurrence count, and end-positions",
		Long: `Loads a previously built graph from --dir and reports, for the given
pattern (as trailing args, or one whitespace-separated line on stdin if no
args are given): the longest suffix of the pattern found in the corpus, its
occurrence count, and up to --limit end-positions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := parseTokenWidth(tokenWidth)
			if err != nil {
				return err
			}
			pattern, err := parsePattern(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg := config.Resolve(config.WithTokenWidth(width))

			switch variant {
			case "dawg":
				g, err := dawg.LoadFrom(dir, cfg)
				if err != nil {
					return err
				}
				defer g.Close()
				return runQuery(g, pattern, limit)
			case "cdawg":
				g, err := cdawg.LoadFrom(dir, cfg)
				if err != nil {
					return err
				}
				defer g.Close()
				return runQuery(g, pattern, limit)
			default:
				return fmt.Errorf("dawgutil: invalid --variant %q (want dawg or cdawg)", variant)
			}
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "dawg", "automaton variant: dawg or cdawg")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the graph was built into (required)")
	cmd.Flags().StringVar(&tokenWidth, "token-width", "32", "token width: 16 or 32")
	cmd.Flags().IntVar(&limit, "limit", 10, "max end-positions to print (<=0 for unbounded)")
	cmd.MarkFlagRequired("dir")

	return cmd
}

func runQuery(a automaton.Automaton, pattern []token.Token, limit int) error {
	s, matched := a.LongestSuffixMatch(automaton.Source, pattern)
	fmt.Printf("matched_length=%d count=%d\n", matched, a.Count(s))
	fmt.Print("occurrences=")
	first := true
	for pos := range a.Occurrences(s, limit) {
		if !first {
			fmt.Print(",")
		}
		fmt.Print(pos)
		first = false
	}
	fmt.Println()
	return nil
}
