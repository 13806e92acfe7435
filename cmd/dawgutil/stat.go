package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viking-sudo-rm/rusty-dawg/cdawg"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawg"
)

func newStatCmd() *cobra.Command {
	var (
		variant    string
		dir        string
		tokenWidth string
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Report node/edge counts for a built graph",
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
				fmt.Printf("nodes=%d edges=%d\n", g.NumNodes(), g.NumEdges())
				if check {
					return g.CheckInvariants()
				}
				return nil
			case "cdawg":
				g, err := cdawg.LoadFrom(dir, cfg)
				if err != nil {
					return err
				}
				defer g.Close()
				fmt.Printf("nodes=%d edges=%d training_tokens=%d\n", g.NumNodes(), g.NumEdges(), g.TrainLen())
				if check {
					return g.CheckInvariants()
				}
				return nil
			default:
				return fmt.Errorf("dawgutil: invalid --variant %q (want dawg or cdawg)", variant)
			}
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "dawg", "automaton variant: dawg or cdawg")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the graph was built into (required)")
	cmd.Flags().StringVar(&tokenWidth, "token-width", "32", "token width: 16 or 32")
	cmd.Flags().BoolVar(&check, "check", false, "also re-verify AVL/BST edge-tree invariants")
	cmd.MarkFlagRequired("dir")

	return cmd
}
