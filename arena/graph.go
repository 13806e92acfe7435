// Package arena implements the two-arena graph representation of
// spec.md §4.B: parallel node and edge stores, each node owning a balanced
// binary search tree (AVL) of outgoing edges keyed by token symbol.
//
// Because both arenas are flat stores of fixed-size records with no inner
// pointers (spec.md §9 "Unified RAM/disk representation"), the same Graph
// works unmodified whether store.RAM or store.Disk backs it.
package arena

import (
	"fmt"
	"io"
	"sort"

	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
	"github.com/viking-sudo-rm/rusty-dawg/weight"
)

// Graph owns one node store and one edge store. It is the shared
// representation used by both the DAWG and CDAWG builders; the only
// difference between the two variants at this layer is whether the
// edge Start/End range fields are meaningful.
type Graph struct {
	nodes  store.Store
	edges  store.Store
	layout weight.Layout
}

// New wraps an already-sized pair of stores (RAM or disk) as a Graph.
// Callers are responsible for choosing matching node/edge stores (see
// store.CreateDisk / store.NewRAM).
func New(nodes, edges store.Store, layout weight.Layout) *Graph {
	return &Graph{nodes: nodes, edges: edges, layout: layout}
}

func (g *Graph) Layout() weight.Layout { return g.layout }
func (g *Graph) NumNodes() int         { return int(g.nodes.Len()) }
func (g *Graph) NumEdges() int         { return int(g.edges.Len()) }

// NodeStore and EdgeStore expose the backing stores directly, so a caller
// (dawg.Graph.SaveTo, cdawg.Graph.SaveTo) can materialize them to disk the
// same way regardless of which store.Store the arena was built with.
func (g *Graph) NodeStore() store.Store { return g.nodes }
func (g *Graph) EdgeStore() store.Store { return g.edges }

func (g *Graph) getNodeRec(i NodeIndex) node { return decodeNode(g.nodes.Get(i)) }
func (g *Graph) putNodeRec(i NodeIndex, n node) {
	if err := g.nodes.Set(i, encodeNode(n)); err != nil {
		dawgerr.Violate(fmt.Sprintf("node store write at %d: %v", i, err))
	}
}
func (g *Graph) getEdgeRec(i EdgeIndex) edge { return decodeEdge(g.edges.Get(i)) }
func (g *Graph) putEdgeRec(i EdgeIndex, e edge) {
	if err := g.edges.Set(i, encodeEdge(e)); err != nil {
		dawgerr.Violate(fmt.Sprintf("edge store write at %d: %v", i, err))
	}
}

func (g *Graph) violateDuplicateSymbol(sym token.Token) {
	dawgerr.Violate(fmt.Sprintf("duplicate outgoing edge for symbol %d", sym))
}

// AddNode creates a new state with the given length and failure link,
// returning its stable index. Node 0, the source state, is created by the
// very first call with length 0 and failure Null.
func (g *Graph) AddNode(length uint32, failure NodeIndex) NodeIndex {
	idx, err := g.nodes.Push(encodeNode(node{firstEdge: Null, length: length, failure: failure}))
	if err != nil {
		dawgerr.Violate(fmt.Sprintf("node store push: %v", err))
	}
	return idx
}

// AddEdge inserts a new symbol-labeled transition from `from` to `to`,
// rebalancing from's edge tree. It panics with dawgerr.Invariant if `from`
// already has an outgoing edge for symbol (spec.md §4.B / §7).
func (g *Graph) AddEdge(from NodeIndex, symbol token.Token, to NodeIndex) EdgeIndex {
	return g.addEdge(from, symbol, to, 0, 0)
}

// AddEdgeRange is AddEdge for the CDAWG, additionally recording the
// [start, end) range into the training token vector that this edge
// consumes.
func (g *Graph) AddEdgeRange(from NodeIndex, symbol token.Token, to NodeIndex, start, end uint64) EdgeIndex {
	return g.addEdge(from, symbol, to, start, end)
}

func (g *Graph) addEdge(from NodeIndex, symbol token.Token, to NodeIndex, start, end uint64) EdgeIndex {
	newIdx, err := g.edges.Push(encodeEdge(edge{symbol: symbol, target: to, left: Null, right: Null, start: start, end: end}))
	if err != nil {
		dawgerr.Violate(fmt.Sprintf("edge store push: %v", err))
	}

	n := g.getNodeRec(from)
	newRoot, _ := g.insertAVL(n.firstEdge, newIdx, symbol)
	n.firstEdge = newRoot
	g.putNodeRec(from, n)
	return newIdx
}

// RerouteEdge replaces the target (and, for the CDAWG, the range) of an
// existing `from`-symbol edge, leaving the AVL tree's shape untouched.
func (g *Graph) RerouteEdge(from NodeIndex, symbol token.Token, newTo NodeIndex) {
	g.rerouteEdge(from, symbol, newTo, -1, -1)
}

func (g *Graph) RerouteEdgeRange(from NodeIndex, symbol token.Token, newTo NodeIndex, start, end uint64) {
	g.rerouteEdge(from, symbol, newTo, int64(start), int64(end))
}

func (g *Graph) rerouteEdge(from NodeIndex, symbol token.Token, newTo NodeIndex, start, end int64) {
	n := g.getNodeRec(from)
	eIdx, ok := g.findAVL(n.firstEdge, symbol)
	if !ok {
		dawgerr.Violate(fmt.Sprintf("reroute: no edge for symbol %d on node %d", symbol, from))
	}
	e := g.getEdgeRec(eIdx)
	e.target = newTo
	if start >= 0 {
		e.start = uint64(start)
	}
	if end >= 0 {
		e.end = uint64(end)
	}
	g.putEdgeRec(eIdx, e)
}

// GetEdge performs the O(log b) lookup of the outgoing edge labeled symbol
// from node `from`.
func (g *Graph) GetEdge(from NodeIndex, symbol token.Token) (EdgeIndex, bool) {
	n := g.getNodeRec(from)
	return g.findAVL(n.firstEdge, symbol)
}

// Neighbors returns an in-order (ascending-by-symbol) iterator over the
// outgoing edges of `from`.
func (g *Graph) Neighbors(from NodeIndex) func(yield func(token.Token, NodeIndex) bool) {
	n := g.getNodeRec(from)
	return func(yield func(token.Token, NodeIndex) bool) {
		g.inorder(n.firstEdge, func(_ EdgeIndex, e edge) bool {
			return yield(e.symbol, e.target)
		})
	}
}

// NeighborEdges is like Neighbors but yields edge indices, letting callers
// reach the CDAWG's range fields.
func (g *Graph) NeighborEdges(from NodeIndex) func(yield func(EdgeIndex) bool) {
	n := g.getNodeRec(from)
	return func(yield func(EdgeIndex) bool) {
		g.inorder(n.firstEdge, func(idx EdgeIndex, _ edge) bool {
			return yield(idx)
		})
	}
}

func (g *Graph) EdgeTarget(e EdgeIndex) NodeIndex { return g.getEdgeRec(e).target }
func (g *Graph) EdgeSymbol(e EdgeIndex) token.Token { return g.getEdgeRec(e).symbol }
func (g *Graph) EdgeRange(e EdgeIndex) (start, end uint64) {
	r := g.getEdgeRec(e)
	return r.start, r.end
}
func (g *Graph) SetEdgeEnd(e EdgeIndex, end uint64) {
	r := g.getEdgeRec(e)
	r.end = end
	g.putEdgeRec(e, r)
}

func (g *Graph) Length(n NodeIndex) uint32      { return g.getNodeRec(n).length }
func (g *Graph) Failure(n NodeIndex) NodeIndex  { return g.getNodeRec(n).failure }
func (g *Graph) SetFailure(n NodeIndex, f NodeIndex) {
	r := g.getNodeRec(n)
	r.failure = f
	g.putNodeRec(n, r)
}
func (g *Graph) IsFinal(n NodeIndex) bool { return g.getNodeRec(n).final }
func (g *Graph) SetFinal(n NodeIndex, final bool) {
	r := g.getNodeRec(n)
	r.final = final
	g.putNodeRec(n, r)
}
func (g *Graph) Count(n NodeIndex) uint64 {
	if !g.layout.TracksCounts() {
		return 0
	}
	return g.getNodeRec(n).count
}
func (g *Graph) SetCount(n NodeIndex, count uint64) {
	r := g.getNodeRec(n)
	r.count = count
	g.putNodeRec(n, r)
}
func (g *Graph) AddCount(n NodeIndex, delta uint64) {
	r := g.getNodeRec(n)
	r.count += delta
	g.putNodeRec(n, r)
}
func (g *Graph) FirstOcc(n NodeIndex) uint64 { return g.getNodeRec(n).firstOcc }
func (g *Graph) SetFirstOcc(n NodeIndex, pos uint64) {
	r := g.getNodeRec(n)
	r.firstOcc = pos
	g.putNodeRec(n, r)
}

// IsPrimary reports whether n was created directly for one token position
// (as opposed to a clone or edge-split internal node introduced to keep
// the graph's shape correct). See automaton.WalkOccurrences.
func (g *Graph) IsPrimary(n NodeIndex) bool { return g.getNodeRec(n).primary }
func (g *Graph) SetPrimary(n NodeIndex, primary bool) {
	r := g.getNodeRec(n)
	r.primary = primary
	g.putNodeRec(n, r)
}

// Weight views, per spec.md §4.C.
func (g *Graph) NodeBasic(n NodeIndex) weight.Basic {
	r := g.getNodeRec(n)
	return weight.Basic{Length: r.length, Failure: r.failure}
}
func (g *Graph) NodeCounting(n NodeIndex) weight.Counting {
	return weight.Counting{Basic: g.NodeBasic(n), Count: g.Count(n)}
}
func (g *Graph) NodeCdawg(n NodeIndex) weight.Cdawg {
	r := g.getNodeRec(n)
	return weight.Cdawg{Counting: g.NodeCounting(n), FirstOcc: r.firstOcc}
}

func (g *Graph) Flush() error {
	if err := g.nodes.Flush(); err != nil {
		return err
	}
	return g.edges.Flush()
}

func (g *Graph) Close() error {
	if err := g.nodes.Close(); err != nil {
		return err
	}
	return g.edges.Close()
}

// FillRatio reports the worse of the two arenas' fill ratios, for a
// disk-backed build (spec.md §5).
func (g *Graph) FillRatio() float64 {
	nr, er := g.nodes.FillRatio(), g.edges.FillRatio()
	if nr > er {
		return nr
	}
	return er
}

// Dump writes a human-readable listing of every node and its outgoing
// edges, in the spirit of smhanov-dawg/disk.go's DumpFile debugging aid.
func (g *Graph) Dump(w io.Writer) {
	for i := NodeIndex(0); i < g.nodes.Len(); i++ {
		n := g.getNodeRec(i)
		fmt.Fprintf(w, "node %d: length=%d failure=%v final=%v count=%d\n", i, n.length, n.failure, n.final, n.count)
		for sym, to := range g.Neighbors(i) {
			fmt.Fprintf(w, "  --%d--> %d\n", sym, to)
		}
	}
}

// ComputeCounts implements the reverse-topological endpos-count pass shared
// by the DAWG and CDAWG builders: visiting nodes in decreasing length order,
// each node's count is added into its failure link's count, so a state's
// count ends up equal to the size of its endpos class.
func ComputeCounts(g *Graph) {
	n := g.NumNodes()
	order := make([]NodeIndex, 0, n)
	for i := 1; i < n; i++ {
		order = append(order, NodeIndex(i))
	}
	sort.Slice(order, func(i, j int) bool {
		return g.Length(order[i]) > g.Length(order[j])
	})
	for _, s := range order {
		f := g.Failure(s)
		if f == Null {
			continue
		}
		g.AddCount(f, g.Count(s))
	}
}

// CheckInvariants re-verifies spec.md §3's AVL/BST invariants (4) over
// every node's edge tree: strictly ascending in-order symbols and
// |balance| <= 1. Intended for tests, not the hot path.
func (g *Graph) CheckInvariants() error {
	for i := NodeIndex(0); i < g.nodes.Len(); i++ {
		n := g.getNodeRec(i)
		var prev token.Token
		first := true
		var bad error
		g.inorder(n.firstEdge, func(idx EdgeIndex, e edge) bool {
			if e.balance < -1 || e.balance > 1 {
				bad = fmt.Errorf("node %d edge %d: balance %d out of range", i, idx, e.balance)
				return false
			}
			if !first && prev >= e.symbol {
				bad = fmt.Errorf("node %d: edge symbols out of order (%d >= %d)", i, prev, e.symbol)
				return false
			}
			prev, first = e.symbol, false
			return true
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}
