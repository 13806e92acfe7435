package dawg

import (
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/viking-sudo-rm/rusty-dawg/arena"
	"github.com/viking-sudo-rm/rusty-dawg/automaton"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/diskfmt"
	"github.com/viking-sudo-rm/rusty-dawg/internal/observability"
	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
	"github.com/viking-sudo-rm/rusty-dawg/weight"
)

// Graph is the finalized, read-only suffix automaton returned by
// Builder.Finalize or LoadFrom. Every method is pure and safe for
// concurrent use by any number of readers (spec.md §5).
type Graph struct {
	g        *arena.Graph
	cfg      config.Options
	failKids [][]arena.NodeIndex // built lazily, see Occurrences
}

var _ automaton.Automaton = (*Graph)(nil)

// Transition performs a single-symbol step from s, honoring the DAWG's
// plain single-symbol edges.
func (gr *Graph) Transition(s automaton.State, sym token.Token) (automaton.State, bool) {
	e, ok := gr.g.GetEdge(s.Node, sym)
	if !ok {
		return automaton.State{}, false
	}
	return automaton.State{Node: gr.g.EdgeTarget(e), Edge: arena.Null}, true
}

// Follow runs Transition over every symbol of pattern in turn, failing as
// soon as one step has no transition.
func (gr *Graph) Follow(s automaton.State, pattern []token.Token) (automaton.State, bool) {
	for _, sym := range pattern {
		next, ok := gr.Transition(s, sym)
		if !ok {
			return automaton.State{}, false
		}
		s = next
	}
	return s, true
}

// LongestSuffixMatch is spec.md §4.F's n-gram lookup primitive.
func (gr *Graph) LongestSuffixMatch(s automaton.State, pattern []token.Token) (automaton.State, int) {
	return automaton.LongestSuffixMatch(gr.g, gr.Transition, s, pattern)
}

// Count returns the endpos-class size of s, or 0 if the graph was built
// without counts (spec.md §7 "by contract, not an error").
func (gr *Graph) Count(s automaton.State) uint64 {
	return gr.g.Count(s.Node)
}

// Occurrences lazily enumerates end-positions of s's substrings by
// walking the reverse failure-link structure, bounded by limit
// (limit <= 0 means unbounded).
func (gr *Graph) Occurrences(s automaton.State, limit int) iter.Seq[uint64] {
	if gr.failKids == nil {
		gr.failKids = automaton.FailureChildren(gr.g)
	}
	return automaton.WalkOccurrences(gr.g, gr.failKids, s.Node, limit)
}

// NumNodes / NumEdges expose the arena's size, mirroring
// smhanov-dawg.Finder's NumNodes/NumEdges.
func (gr *Graph) NumNodes() int { return gr.g.NumNodes() }
func (gr *Graph) NumEdges() int { return gr.g.NumEdges() }

// CheckInvariants re-verifies the AVL/BST shape of every edge tree; used
// by tests, not the query hot path.
func (gr *Graph) CheckInvariants() error { return gr.g.CheckInvariants() }

// Dump writes a human-readable listing of the automaton.
func (gr *Graph) Dump(w io.Writer) { gr.g.Dump(w) }

// SaveTo persists the graph as nodes.bin / edges.bin under dir, per
// spec.md §6. This always materializes the current records to dir via
// store.WriteTo, regardless of config.Backend: for a RAM-backed graph
// that is the only place the bytes ever get written, and for a
// disk-backed graph it means dir need not be the same directory the
// builder was originally pointed at.
func (gr *Graph) SaveTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dawg: mkdir %s: %w: %w", dir, err, dawgerr.ErrIO)
	}
	flags := uint32(0)
	if gr.cfg.TrackCounts {
		flags |= diskfmt.FlagCounts
	}
	if err := store.WriteTo(gr.g.NodeStore(), dir+"/nodes.bin", flags); err != nil {
		return err
	}
	return store.WriteTo(gr.g.EdgeStore(), dir+"/edges.bin", flags)
}

// LoadFrom opens a previously-saved DAWG read-only via memory-mapped
// files, exactly mirroring smhanov-dawg's Load(filename) -> mmap.Open
// pattern but across the module's two-file (nodes.bin/edges.bin) layout.
func LoadFrom(dir string, cfg config.Options) (*Graph, error) {
	obs := observability.New(cfg.Logger)
	nodes, err := store.OpenDisk(dir+"/nodes.bin", arena.NodeSize)
	if err != nil {
		obs.FormatMismatch(dir+"/nodes.bin", err)
		return nil, err
	}
	edges, err := store.OpenDisk(dir+"/edges.bin", arena.EdgeSize)
	if err != nil {
		obs.FormatMismatch(dir+"/edges.bin", err)
		nodes.Close()
		return nil, err
	}

	layout := weightLayoutFromFlags(nodes.Flags())
	g := arena.New(nodes, edges, layout)
	return &Graph{g: g, cfg: cfg}, nil
}

// weightLayoutFromFlags recovers the Layout a store was built with from its
// on-disk header flags (diskfmt.FlagCounts / diskfmt.FlagCdawg), so LoadFrom
// does not need the caller to already know it.
func weightLayoutFromFlags(flags uint32) weight.Layout {
	switch {
	case flags&diskfmt.FlagCdawg != 0:
		return weight.LayoutCdawg
	case flags&diskfmt.FlagCounts != 0:
		return weight.LayoutCounting
	default:
		return weight.LayoutBasic
	}
}

func (gr *Graph) Close() error { return gr.g.Close() }
