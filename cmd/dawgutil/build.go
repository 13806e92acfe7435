package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viking-sudo-rm/rusty-dawg/cdawg"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawg"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

func newBuildCmd() *cobra.Command {
	var (
		variant    string
		dir        string
		tokenWidth string
		noCounts   bool
		separator  uint32
		input      string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a DAWG or CDAWG from a token stream and save it to a directory",
		Long: `Reads whitespace-separated decimal token ids, one document per line,
from --input (or stdin if omitted), and writes the resulting automaton as a
disk-backed graph under --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := parseTokenWidth(tokenWidth)
			if err != nil {
				return err
			}

			r := cmd.InOrStdin()
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("dawgutil: open %s: %w", input, err)
				}
				defer f.Close()
				r = f
			}
			docs, err := readDocuments(r)
			if err != nil {
				return err
			}

			var nTokens int64
			for _, d := range docs {
				nTokens += int64(len(d))
			}

			opts := []config.Option{
				config.WithTokenWidth(width),
				config.WithCounts(!noCounts),
				config.WithSeparator(token.Token(separator)),
				config.WithDiskBackend(dir, nTokens*2+16, nTokens*3+16),
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("dawgutil: mkdir %s: %w", dir, err)
			}

			ctx := context.Background()
			switch variant {
			case "dawg":
				return buildDawg(ctx, opts, docs)
			case "cdawg":
				return buildCdawg(ctx, opts, docs)
			default:
				return fmt.Errorf("dawgutil: invalid --variant %q (want dawg or cdawg)", variant)
			}
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "dawg", "automaton variant: dawg or cdawg")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to write the graph into (required)")
	cmd.Flags().StringVar(&tokenWidth, "token-width", "32", "token width: 16 or 32")
	cmd.Flags().BoolVar(&noCounts, "no-counts", false, "disable endpos-count tracking")
	cmd.Flags().Uint32Var(&separator, "separator", token.DefaultSeparator, "reserved document-separator token id")
	cmd.Flags().StringVar(&input, "input", "", "file to read tokens from (default stdin)")
	cmd.MarkFlagRequired("dir")

	return cmd
}

func buildDawg(ctx context.Context, opts []config.Option, docs [][]token.Token) error {
	opts = append(opts, config.WithVariant(config.VariantDAWG))
	b, err := dawg.New(opts...)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if err := b.BuildFrom(ctx, func(yield func(token.Token) bool) {
			for _, t := range doc {
				if !yield(t) {
					return
				}
			}
		}); err != nil {
			return fmt.Errorf("dawgutil: build token stream: %w", err)
		}
		if i < len(docs)-1 {
			b.EndDocument()
		}
	}
	if len(docs) > 0 {
		b.EndDocument()
	}
	stats := b.Stats()
	g, err := b.Finalize()
	if err != nil {
		return err
	}
	defer g.Close()
	fmt.Printf("built dawg: %d nodes, %d edges\n", g.NumNodes(), g.NumEdges())
	fmt.Printf("clones=%d docs=%d\n", stats.Clones, stats.Docs)
	return nil
}

func buildCdawg(ctx context.Context, opts []config.Option, docs [][]token.Token) error {
	opts = append(opts, config.WithVariant(config.VariantCDAWG))
	b, err := cdawg.New(opts...)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if err := b.BuildFrom(ctx, func(yield func(token.Token) bool) {
			for _, t := range doc {
				if !yield(t) {
					return
				}
			}
		}); err != nil {
			return fmt.Errorf("dawgutil: build token stream: %w", err)
		}
		if i < len(docs)-1 {
			b.EndDocument()
		}
	}
	if len(docs) > 0 {
		b.EndDocument()
	}
	stats := b.Stats()
	g, err := b.Finalize()
	if err != nil {
		return err
	}
	defer g.Close()
	fmt.Printf("built cdawg: %d nodes, %d edges, %d training tokens\n", g.NumNodes(), g.NumEdges(), g.TrainLen())
	fmt.Printf("clones=%d splits=%d docs=%d\n", stats.Clones, stats.Splits, stats.Docs)
	return nil
}
