// Package cdawg implements the online construction of the compact suffix
// automaton of spec.md §4.E: edges labeled by [start, end) ranges into a
// shared training-token vector, maintained via Ukkonen-style active-point
// canonicalization generalized from dawg's single-symbol "extend" to
// range-labeled edges. See DESIGN.md for the one disclosed simplification
// (no separate_node minimality merge) this construction makes relative to
// the literature's fully-minimal CDAWG.
package cdawg

import (
	"context"
	"fmt"

	"github.com/viking-sudo-rm/rusty-dawg/arena"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/diskfmt"
	"github.com/viking-sudo-rm/rusty-dawg/internal/observability"
	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
	"github.com/viking-sudo-rm/rusty-dawg/weight"
)

// openEnd marks an edge whose range extends to "now" — the unique current
// sink's incoming edges, per spec.md §4.E "the open sink". Patched to the
// final stream length at Finalize.
const openEnd uint64 = ^uint64(0)

// Builder incrementally constructs a compact suffix automaton. One Builder
// owns one Graph; not re-entrant, not safe for concurrent use (spec.md §5).
type Builder struct {
	cfg   config.Options
	g     *arena.Graph
	train store.Store
	obs   *observability.Builder

	pos        int // tokens consumed so far (= len(train) after every push)
	activeNode arena.NodeIndex
	activeEdge token.Token
	activeLen  int
	remainder  int
	docs       int
	final      bool
}

// New creates a Builder per cfg, allocating the node/edge arenas and the
// training-token vector store.
func New(opts ...config.Option) (*Builder, error) {
	cfg := config.Resolve(opts...)

	layout := weight.LayoutCdawg

	nodeCap, edgeCap := cfg.EstimateCapacity(int64(max64(cfg.NodeCapacity, cfg.EdgeCapacity, 1)))
	if cfg.NodeCapacity > 0 {
		nodeCap = cfg.NodeCapacity
	}
	if cfg.EdgeCapacity > 0 {
		edgeCap = cfg.EdgeCapacity
	}
	tokenElemSize := store.TokenWidthElemSize(cfg.TokenWidth)

	obs := observability.New(cfg.Logger)

	var nodes, edges, train store.Store
	var err error
	switch cfg.Backend {
	case config.BackendRAM:
		nodes = store.NewRAM(arena.NodeSize)
		edges = store.NewRAM(arena.EdgeSize)
		train = store.NewRAM(tokenElemSize)
	case config.BackendDisk:
		flags := diskfmt.FlagCounts | diskfmt.FlagCdawg
		nodes, err = store.CreateDisk(cfg.Dir+"/nodes.bin", arena.NodeSize, store.Index(nodeCap), flags)
		if err != nil {
			obs.CapacityExceeded("cdawg-nodes", err)
			return nil, err
		}
		edges, err = store.CreateDisk(cfg.Dir+"/edges.bin", arena.EdgeSize, store.Index(edgeCap), flags)
		if err != nil {
			obs.CapacityExceeded("cdawg-edges", err)
			return nil, err
		}
		// train.vec is sized the same as the node capacity estimate: one
		// entry per expected token.
		train, err = store.CreateDisk(cfg.Dir+"/train.vec", tokenElemSize, store.Index(nodeCap), flags)
		if err != nil {
			obs.CapacityExceeded("cdawg-train", err)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cdawg: unknown backend %v: %w", cfg.Backend, dawgerr.ErrInvalidArgument)
	}

	g := arena.New(nodes, edges, layout)
	source := g.AddNode(0, arena.Null)
	if source != 0 {
		dawgerr.Violate("source node did not get index 0")
	}

	return &Builder{cfg: cfg, g: g, train: train, obs: obs, activeNode: 0}, nil
}

// Stats returns a snapshot of the clone/split/document counters this
// builder has accumulated so far.
func (b *Builder) Stats() observability.Stats { return b.obs.Stats() }

func max64(vs ...int64) int64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// FillRatio exposes the current fill ratio of the underlying disk arena.
func (b *Builder) FillRatio() float64 { return b.g.FillRatio() }

// BuildFrom feeds every token in the sequence to AddToken, returning early
// if ctx is cancelled between tokens.
func (b *Builder) BuildFrom(ctx context.Context, tokens func(yield func(token.Token) bool)) error {
	var addErr error
	tokens(func(t token.Token) bool {
		if err := ctx.Err(); err != nil {
			addErr = err
			return false
		}
		if err := b.AddToken(t); err != nil {
			addErr = err
			return false
		}
		return true
	})
	return addErr
}

// AddToken appends one token to the automaton under construction. Feeding
// the configured document separator here is rejected: use EndDocument
// instead, matching the DAWG builder's Open Question decision.
func (b *Builder) AddToken(t token.Token) error {
	if b.final {
		return fmt.Errorf("cdawg: AddToken after Finalize: %w", dawgerr.ErrInvalidArgument)
	}
	if t == b.cfg.DocumentSeparator {
		return fmt.Errorf("cdawg: separator token fed via AddToken, use EndDocument: %w", dawgerr.ErrInvalidArgument)
	}
	b.extend(t)
	if r := b.g.FillRatio(); r > capacityWarningThreshold {
		b.obs.CapacityWarning("cdawg", r)
	}
	return nil
}

// capacityWarningThreshold mirrors dawg.Builder's: past this fill ratio a
// disk-backed build logs a warning so a caller can pre-size its next run.
const capacityWarningThreshold = 0.9

func (b *Builder) tokenAt(pos int) token.Token {
	return token.Decode(b.train.Get(store.Index(pos)), b.cfg.TokenWidth)
}

// effectiveEnd resolves an edge's logical end position: openEnd edges
// always currently extend to the stream length consumed so far.
func (b *Builder) effectiveEnd(end uint64) uint64 {
	if end == openEnd {
		return uint64(b.pos)
	}
	return end
}

func (b *Builder) edgeLen(eIdx arena.EdgeIndex) uint64 {
	start, end := b.g.EdgeRange(eIdx)
	return b.effectiveEnd(end) - start
}

// extend runs one step of the online active-point construction for symbol
// a, per spec.md §4.E's numbered algorithm.
func (b *Builder) extend(a token.Token) {
	if _, err := b.train.Push(token.Encode(a, b.cfg.TokenWidth)); err != nil {
		dawgerr.Violate(fmt.Sprintf("train vector push: %v", err))
	}
	b.pos++
	i := b.pos - 1 // 0-indexed position of a
	b.remainder++

	var lastNewNode arena.NodeIndex = arena.Null
	var curSink arena.NodeIndex = arena.Null

	for b.remainder > 0 {
		if b.activeLen == 0 {
			b.activeEdge = a
		}

		eIdx, ok := b.g.GetEdge(b.activeNode, b.activeEdge)
		if ok {
			length := b.edgeLen(eIdx)
			if uint64(b.activeLen) >= length {
				// Canonicalize: walk down to the edge's target and retry.
				b.activeNode = b.g.EdgeTarget(eIdx)
				b.activeLen -= int(length)
				if b.activeLen > 0 {
					b.activeEdge = b.tokenAt(i - b.activeLen)
				}
				continue
			}
			start, _ := b.g.EdgeRange(eIdx)
			next := b.tokenAt(int(start) + b.activeLen)
			if next == a {
				// Rule 3: already present; extend implicitly and stop.
				b.activeLen++
				if lastNewNode != arena.Null {
					b.g.SetFailure(lastNewNode, b.activeNode)
				}
				break
			}
		}

		if curSink == arena.Null {
			curSink = b.g.AddNode(uint32(i+1), arena.Null)
			b.g.SetFirstOcc(curSink, uint64(i+1))
			b.g.SetPrimary(curSink, true)
			b.g.SetCount(curSink, 1)
		}

		var branch arena.NodeIndex
		if !ok {
			b.g.AddEdgeRange(b.activeNode, a, curSink, uint64(i), openEnd)
			branch = b.activeNode
		} else {
			start, end := b.g.EdgeRange(eIdx)
			w := b.g.AddNode(b.g.Length(b.activeNode)+uint32(b.activeLen), arena.Null)
			oldTarget := b.g.EdgeTarget(eIdx)
			splitSym := b.tokenAt(int(start) + b.activeLen)
			b.g.RerouteEdgeRange(b.activeNode, b.activeEdge, w, start, start+uint64(b.activeLen))
			b.g.AddEdgeRange(w, splitSym, oldTarget, start+uint64(b.activeLen), end)
			b.g.AddEdgeRange(w, a, curSink, uint64(i), openEnd)
			branch = w
			b.obs.Split(int64(w), int64(curSink))
		}

		if lastNewNode != arena.Null {
			b.g.SetFailure(lastNewNode, branch)
		}
		if branch != b.activeNode {
			lastNewNode = branch
		} else {
			lastNewNode = arena.Null
		}

		b.remainder--
		if b.activeNode == 0 {
			if b.activeLen > 0 {
				b.activeLen--
				if b.activeLen > 0 {
					b.activeEdge = b.tokenAt(i - b.activeLen + 1)
				}
			}
		} else {
			f := b.g.Failure(b.activeNode)
			if f == arena.Null {
				f = 0
			}
			b.activeNode = f
		}
	}

	if lastNewNode != arena.Null {
		b.g.SetFailure(lastNewNode, b.activeNode)
	}
	if curSink != arena.Null {
		b.g.SetFailure(curSink, b.activeNode)
	}
}

// materialize forces an explicit node to exist at the current active
// point, splitting the active edge if the point currently lies mid-edge.
// It adds no new outgoing edge; used only by EndDocument and Finalize to
// mark a document boundary without feeding the separator through the main
// construction loop (which would otherwise leave "$"-labeled edges in the
// graph, unlike the DAWG's out-of-band EndDocument).
func (b *Builder) materialize() arena.NodeIndex {
	if b.activeLen == 0 {
		return b.activeNode
	}
	eIdx, ok := b.g.GetEdge(b.activeNode, b.activeEdge)
	if !ok {
		dawgerr.Violate("materialize: active edge vanished")
	}
	start, end := b.g.EdgeRange(eIdx)
	w := b.g.AddNode(b.g.Length(b.activeNode)+uint32(b.activeLen), arena.Null)
	oldTarget := b.g.EdgeTarget(eIdx)
	splitSym := b.tokenAt(int(start) + b.activeLen)
	b.g.RerouteEdgeRange(b.activeNode, b.activeEdge, w, start, start+uint64(b.activeLen))
	b.g.AddEdgeRange(w, splitSym, oldTarget, start+uint64(b.activeLen), end)
	return w
}

// EndDocument marks the current position as a sink (per spec.md §4.E
// "Document boundaries are modeled identically to the DAWG") and resets
// the active point to the source so the next document starts fresh.
func (b *Builder) EndDocument() {
	n := b.materialize()
	b.g.SetFinal(n, true)
	b.obs.EndDocument(b.docs)
	b.docs++
	b.activeNode = 0
	b.activeLen = 0
	b.remainder = 0
}

// Finalize locks the builder, patches every still-open edge to the final
// stream length, computes endpos-class counts, and returns a read-only
// Graph.
func (b *Builder) Finalize() (*Graph, error) {
	if b.final {
		return nil, fmt.Errorf("cdawg: Finalize called twice: %w", dawgerr.ErrInvalidArgument)
	}
	if n := b.materialize(); !b.g.IsFinal(n) && n != 0 {
		b.g.SetFinal(n, true)
	}
	b.final = true

	b.patchOpenEdges()
	arena.ComputeCounts(b.g)

	if err := b.g.Flush(); err != nil {
		return nil, err
	}
	if err := b.train.Flush(); err != nil {
		return nil, err
	}
	return &Graph{g: b.g, train: b.train, cfg: b.cfg, trainLen: uint64(b.pos)}, nil
}

// patchOpenEdges resolves every edge still carrying the open-sink sentinel
// end to the final stream length, per spec.md §4.E "remember to patch them
// on finalize". Scanning all edges at finalize time (rather than keeping a
// side list during construction) avoids having to track which indices a
// reroute has since superseded.
func (b *Builder) patchOpenEdges() {
	final := uint64(b.pos)
	for i := 0; i < b.g.NumNodes(); i++ {
		for eIdx := range b.g.NeighborEdges(arena.NodeIndex(i)) {
			_, end := b.g.EdgeRange(eIdx)
			if end == openEnd {
				b.g.SetEdgeEnd(eIdx, final)
			}
		}
	}
}
