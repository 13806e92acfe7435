// Package automaton holds the query-surface pieces shared by dawg.Graph and
// cdawg.Graph (spec.md §4.F): the opaque State token, the Automaton
// interface both variants implement, and the reverse-failure-link walk
// that backs Occurrences.
package automaton

import (
	"iter"

	"github.com/viking-sudo-rm/rusty-dawg/arena"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

// State is the opaque token callers carry between query calls. Offset and
// Edge are always zero/Null for the DAWG; for the CDAWG, Edge identifies
// the outgoing edge from Node currently being traversed and Offset is the
// number of symbols already consumed along it — together the "(s, k)"
// working position of spec.md §4.E, exposed read-only here.
type State struct {
	Node   arena.NodeIndex
	Offset uint32
	Edge   arena.EdgeIndex
}

// Source is the initial state every query starts from.
var Source = State{Node: 0, Edge: arena.Null}

// Automaton is the read-only query surface of spec.md §4.F, implemented
// independently by dawg.Graph (single-symbol edges) and cdawg.Graph
// (range-labeled edges), sharing the helpers below.
type Automaton interface {
	Transition(s State, sym token.Token) (State, bool)
	Follow(s State, pattern []token.Token) (State, bool)
	LongestSuffixMatch(s State, pattern []token.Token) (State, int)
	Count(s State) uint64
	Occurrences(s State, limit int) iter.Seq[uint64]
}

// FailureChildren builds the reverse failure-link adjacency over all of
// g's nodes: for each node n, the set of nodes whose failure link points
// to n. This is the "reverse failure-link structure" spec.md §4.F's
// Occurrences is defined over. It is O(n) and is intended to be built
// once per finalized graph and cached by the caller.
func FailureChildren(g *arena.Graph) [][]arena.NodeIndex {
	n := g.NumNodes()
	children := make([][]arena.NodeIndex, n)
	for i := 1; i < n; i++ { // node 0 (source) has no failure link
		f := g.Failure(arena.NodeIndex(i))
		if f == arena.Null {
			continue
		}
		children[f] = append(children[f], arena.NodeIndex(i))
	}
	return children
}

// WalkOccurrences yields the FirstOcc position of every primary node (one
// created directly for a single token position, see arena.Graph.IsPrimary)
// in the subtree rooted at `start` over the reverse failure-link structure,
// stopping after `limit` positions have been produced (limit <= 0 means
// unbounded). `start` itself is included when primary. Every node in the
// endpos class a state's Count reports is either that state or a
// descendant of it here, and each contributes exactly one primary node, so
// the number of positions yielded (absent a limit) equals Count(start).
// Order is stable (pre-order over the failure-link tree) but otherwise
// unspecified, per spec.md §4.F.
func WalkOccurrences(g *arena.Graph, children [][]arena.NodeIndex, start arena.NodeIndex, limit int) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		produced := 0
		var walk func(n arena.NodeIndex) bool
		walk = func(n arena.NodeIndex) bool {
			if g.IsPrimary(n) {
				if !yield(g.FirstOcc(n)) {
					return false
				}
				produced++
				if limit > 0 && produced >= limit {
					return false
				}
			}
			for _, c := range children[n] {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(start)
	}
}

// LongestSuffixMatch implements spec.md §4.F's core primitive in terms of
// a variant-specific one-step transition function: for each symbol,
// transition if possible, else follow failure links until a transition
// exists or the source is reached.
func LongestSuffixMatch(
	g *arena.Graph,
	transition func(State, token.Token) (State, bool),
	start State,
	pattern []token.Token,
) (State, int) {
	s := start
	matched := int(g.Length(start.Node))
	for _, sym := range pattern {
		for {
			if next, ok := transition(s, sym); ok {
				s = next
				matched++
				break
			}
			if s.Node == 0 {
				// source has no transition either: this symbol occurs
				// nowhere in the corpus, so it is skipped and matched
				// resets to 0; the next symbol starts a fresh match.
				matched = 0
				break
			}
			s = State{Node: g.Failure(s.Node), Edge: arena.Null}
			matched = int(g.Length(s.Node))
		}
	}
	return s, matched
}
