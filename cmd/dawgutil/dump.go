package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viking-sudo-rm/rusty-dawg/cdawg"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawg"
)

func newDumpCmd() *cobra.Command {
	var (
		variant    string
		dir        string
		tokenWidth string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every node and its outgoing edges, for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := parseTokenWidth(tokenWidth)
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
				g.Dump(os.Stdout)
				return nil
			case "cdawg":
				g, err := cdawg.LoadFrom(dir, cfg)
				if err != nil {
					return err
				}
				defer g.Close()
				g.Dump(os.Stdout)
				return nil
			default:
				return fmt.Errorf("dawgutil: invalid --variant %q (want dawg or cdawg)", variant)
			}
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "dawg", "automaton variant: dawg or cdawg")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the graph was built into (required)")
	cmd.Flags().StringVar(&tokenWidth, "token-width", "32", "token width: 16 or 32")
	cmd.MarkFlagRequired("dir")

	return cmd
}
