package cdawg

import (
	"fmt"
	"io"
	"iter"
	"os"
	"sync"

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

// Graph is the finalized, read-only compact suffix automaton returned by
// Builder.Finalize or LoadFrom.
type Graph struct {
	g        *arena.Graph
	train    store.Store
	cfg      config.Options
	trainLen uint64
	failOnce sync.Once
	failKids [][]arena.NodeIndex
}

var _ automaton.Automaton = (*Graph)(nil)

func (gr *Graph) tokenAt(pos uint64) token.Token {
	return token.Decode(gr.train.Get(store.Index(pos)), gr.cfg.TokenWidth)
}

// Transition consumes one symbol from s, moving into edge-offset
// representation when the step lands mid-edge (spec.md §4.F).
func (gr *Graph) Transition(s automaton.State, sym token.Token) (automaton.State, bool) {
	if s.Edge != arena.Null {
		start, end := gr.g.EdgeRange(s.Edge)
		length := end - start
		if uint64(s.Offset) < length {
			if gr.tokenAt(start+uint64(s.Offset)) != sym {
				return automaton.State{}, false
			}
			next := automaton.State{Node: s.Node, Edge: s.Edge, Offset: s.Offset + 1}
			if uint64(next.Offset) == length {
				return automaton.State{Node: gr.g.EdgeTarget(s.Edge), Edge: arena.Null}, true
			}
			return next, true
		}
		// Offset has reached the edge's end; fall through as if at Node.
		s = automaton.State{Node: gr.g.EdgeTarget(s.Edge), Edge: arena.Null}
	}

	eIdx, ok := gr.g.GetEdge(s.Node, sym)
	if !ok {
		return automaton.State{}, false
	}
	start, end := gr.g.EdgeRange(eIdx)
	if end-start == 1 {
		return automaton.State{Node: gr.g.EdgeTarget(eIdx), Edge: arena.Null}, true
	}
	return automaton.State{Node: s.Node, Edge: eIdx, Offset: 1}, true
}

// Follow runs Transition over every symbol of pattern in turn.
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

// LongestSuffixMatch is spec.md §4.F's n-gram lookup primitive, tracking
// the (node, edge, offset) active point directly through Transition so a
// multi-symbol edge is not flattened to its target node between calls.
// Mid-edge states carry no failure link of their own: on a mismatch while
// partway along an edge, the match first canonicalizes down to the nearest
// explicit ancestor (discarding the partial edge progress) before
// following that node's failure link. This never overcounts matched_length
// but can undercount it by up to one edge's width in the rare case where a
// pattern diverges from the corpus strictly inside a compressed edge; see
// DESIGN.md.
func (gr *Graph) LongestSuffixMatch(s automaton.State, pattern []token.Token) (automaton.State, int) {
	matched := int(gr.g.Length(s.Node)) + int(s.Offset)
	for _, sym := range pattern {
		for {
			if next, ok := gr.Transition(s, sym); ok {
				s = next
				matched++
				break
			}
			if s.Edge != arena.Null {
				s = automaton.State{Node: s.Node, Edge: arena.Null}
				matched = int(gr.g.Length(s.Node))
				continue
			}
			if s.Node == 0 {
				matched = 0
				break
			}
			s = automaton.State{Node: gr.g.Failure(s.Node), Edge: arena.Null}
			matched = int(gr.g.Length(s.Node))
		}
	}
	return s, matched
}

// Count returns the endpos-class size of the node s currently resolves
// to (the nearest node at or beyond s's edge offset).
func (gr *Graph) Count(s automaton.State) uint64 {
	if s.Edge != arena.Null {
		return gr.g.Count(gr.g.EdgeTarget(s.Edge))
	}
	return gr.g.Count(s.Node)
}

// Occurrences enumerates end-positions reachable from s by walking the
// reverse failure-link structure of the node s resolves to.
func (gr *Graph) Occurrences(s automaton.State, limit int) iter.Seq[uint64] {
	gr.failOnce.Do(func() { gr.failKids = automaton.FailureChildren(gr.g) })
	n := s.Node
	if s.Edge != arena.Null {
		n = gr.g.EdgeTarget(s.Edge)
	}
	return automaton.WalkOccurrences(gr.g, gr.failKids, n, limit)
}

func (gr *Graph) NumNodes() int     { return gr.g.NumNodes() }
func (gr *Graph) NumEdges() int     { return gr.g.NumEdges() }
func (gr *Graph) TrainLen() uint64  { return gr.trainLen }

func (gr *Graph) CheckInvariants() error { return gr.g.CheckInvariants() }

func (gr *Graph) Dump(w io.Writer) { gr.g.Dump(w) }

// SaveTo persists the graph as nodes.bin / edges.bin / train.vec under
// dir. Like dawg.Graph.SaveTo, this always materializes the current
// records to dir via store.WriteTo rather than relying on Flush, which is
// a no-op for a RAM-backed graph and otherwise writes nowhere new.
func (gr *Graph) SaveTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cdawg: mkdir %s: %w: %w", dir, err, dawgerr.ErrIO)
	}
	flags := diskfmt.FlagCounts | diskfmt.FlagCdawg
	if err := store.WriteTo(gr.g.NodeStore(), dir+"/nodes.bin", flags); err != nil {
		return err
	}
	if err := store.WriteTo(gr.g.EdgeStore(), dir+"/edges.bin", flags); err != nil {
		return err
	}
	return store.WriteTo(gr.train, dir+"/train.vec", flags)
}

// LoadFrom opens a previously-saved CDAWG read-only via memory-mapped
// files.
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
	train, err := store.OpenDisk(dir+"/train.vec", store.TokenWidthElemSize(cfg.TokenWidth))
	if err != nil {
		obs.FormatMismatch(dir+"/train.vec", err)
		nodes.Close()
		edges.Close()
		return nil, err
	}

	layout := weight.LayoutCdawg
	if nodes.Flags()&diskfmt.FlagCdawg == 0 {
		err := fmt.Errorf("cdawg: load %s: not a CDAWG store: %w", dir, dawgerr.ErrFormatMismatch)
		obs.FormatMismatch(dir, err)
		return nil, err
	}
	g := arena.New(nodes, edges, layout)
	return &Graph{g: g, train: train, cfg: cfg, trainLen: uint64(train.Len())}, nil
}

func (gr *Graph) Close() error {
	if err := gr.g.Close(); err != nil {
		return err
	}
	return gr.train.Close()
}
