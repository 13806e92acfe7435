// Package dawg implements the online suffix-automaton construction of
// spec.md §4.D: the classical Blumer/Blumer/Haussler/Ehrenfeucht/Chen/Seiferas
// algorithm, generalized from smhanov-dawg's Daciuk-style trie-minimization
// DAWG (which builds over sorted whole words) to an incremental one-token-
// at-a-time automaton over an arbitrary token stream. The Builder/Finish
// split and the Finder-shaped read-only result mirror smhanov-dawg's
// Builder/Finder interfaces.
package dawg

import (
	"context"
	"fmt"

	"github.com/viking-sudo-rm/rusty-dawg/arena"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/internal/observability"
	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
	"github.com/viking-sudo-rm/rusty-dawg/weight"
)

// Builder incrementally constructs a suffix automaton. One Builder owns
// one Graph; it is not re-entrant and not safe for concurrent use
// (spec.md §5).
type Builder struct {
	cfg   config.Options
	g     *arena.Graph
	obs   *observability.Builder
	last  arena.NodeIndex
	pos   uint64 // tokens consumed so far, across all documents
	docs  int
	final bool
}

// New creates a Builder per cfg. The source state (index 0, length 0, no
// failure link) is created immediately.
func New(opts ...config.Option) (*Builder, error) {
	cfg := config.Resolve(opts...)

	layout := weight.LayoutBasic
	if cfg.TrackCounts {
		layout = weight.LayoutCounting
	}

	nodeCap, edgeCap := cfg.EstimateCapacity(int64(max64(cfg.NodeCapacity, cfg.EdgeCapacity, 1)))
	if cfg.NodeCapacity > 0 {
		nodeCap = cfg.NodeCapacity
	}
	if cfg.EdgeCapacity > 0 {
		edgeCap = cfg.EdgeCapacity
	}

	obs := observability.New(cfg.Logger)

	var nodes, edges store.Store
	var err error
	switch cfg.Backend {
	case config.BackendRAM:
		nodes = store.NewRAM(arena.NodeSize)
		edges = store.NewRAM(arena.EdgeSize)
	case config.BackendDisk:
		flags := uint32(0)
		if cfg.TrackCounts {
			flags |= 1
		}
		nodes, err = store.CreateDisk(cfg.Dir+"/nodes.bin", arena.NodeSize, store.Index(nodeCap), flags)
		if err != nil {
			obs.CapacityExceeded("dawg-nodes", err)
			return nil, err
		}
		edges, err = store.CreateDisk(cfg.Dir+"/edges.bin", arena.EdgeSize, store.Index(edgeCap), flags)
		if err != nil {
			obs.CapacityExceeded("dawg-edges", err)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("dawg: unknown backend %v: %w", cfg.Backend, dawgerr.ErrInvalidArgument)
	}

	g := arena.New(nodes, edges, layout)
	source := g.AddNode(0, arena.Null)
	if source != 0 {
		dawgerr.Violate("source node did not get index 0")
	}

	return &Builder{cfg: cfg, g: g, obs: obs, last: 0}, nil
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

// FillRatio exposes the current fill ratio of the underlying disk arena
// so callers can pre-size future runs (spec.md §5). Always 0 for RAM
// backends.
func (b *Builder) FillRatio() float64 { return b.g.FillRatio() }

// BuildFrom feeds every token in the sequence to AddToken, returning early
// if ctx is cancelled between tokens (spec.md §5 "Cancellation").
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

// AddToken appends one token to the automaton under construction,
// implementing the per-token algorithm of spec.md §4.D steps 1-6.
//
// Feeding the configured document separator here is rejected: use
// EndDocument instead (Open Question decision, SPEC_FULL.md §"Open
// Questions").
func (b *Builder) AddToken(t token.Token) error {
	if b.final {
		return fmt.Errorf("dawg: AddToken after Finalize: %w", dawgerr.ErrInvalidArgument)
	}
	if t == b.cfg.DocumentSeparator {
		return fmt.Errorf("dawg: separator token fed via AddToken, use EndDocument: %w", dawgerr.ErrInvalidArgument)
	}
	b.extend(t)
	if r := b.g.FillRatio(); r > capacityWarningThreshold {
		b.obs.CapacityWarning("dawg", r)
	}
	return nil
}

// capacityWarningThreshold is the fill ratio past which a disk-backed build
// logs a warning so a long-running caller can pre-size its next run larger.
const capacityWarningThreshold = 0.9

// extend runs the construction algorithm for a single symbol. See
// spec.md §4.D for the step numbering referenced in comments below.
func (b *Builder) extend(a token.Token) {
	b.pos++
	last := b.last
	cur := b.g.AddNode(b.g.Length(last)+1, arena.Null)
	b.g.SetFirstOcc(cur, b.pos)
	b.g.SetPrimary(cur, true)
	if b.cfg.TrackCounts {
		b.g.SetCount(cur, 1)
	}

	// Step 2: walk failure links from p=last while p has no a-edge.
	p := last
	haveP := true
	for haveP {
		if _, ok := b.g.GetEdge(p, a); ok {
			break
		}
		b.g.AddEdge(p, a, cur) // primary only for p == last; secondary from shorter failure-chain states
		if p == 0 {
			haveP = false
			break
		}
		p = b.g.Failure(p)
		if p == arena.Null {
			haveP = false
		}
	}

	if !haveP {
		// Step 3: fell off the source without finding an a-edge anywhere.
		b.g.SetFailure(cur, 0)
		b.last = cur
		return
	}

	// Step 4.
	eIdx, _ := b.g.GetEdge(p, a)
	q := b.g.EdgeTarget(eIdx)
	if b.g.Length(q) == b.g.Length(p)+1 {
		b.g.SetFailure(cur, q)
		b.last = cur
		return
	}

	// Step 5: clone q.
	qc := b.g.AddNode(b.g.Length(p)+1, b.g.Failure(q))
	b.g.SetFirstOcc(qc, b.g.FirstOcc(q))
	if b.cfg.TrackCounts {
		b.g.SetCount(qc, 0) // cloned states start at endpos-class size 0
	}
	for sym, to := range b.g.Neighbors(q) {
		b.g.AddEdge(qc, sym, to) // shared target, secondary by construction
	}
	b.g.SetFailure(q, qc)
	b.g.SetFailure(cur, qc)
	b.obs.Clone(int64(q), int64(qc), int64(b.g.Length(qc)))

	for p != arena.Null {
		eIdx, ok := b.g.GetEdge(p, a)
		if !ok || b.g.EdgeTarget(eIdx) != q {
			break
		}
		b.g.RerouteEdge(p, a, qc)
		if p == 0 {
			break
		}
		p = b.g.Failure(p)
	}

	b.last = cur
}

// EndDocument marks the current state as a sink and resets the active
// state to the source so the next document starts fresh (spec.md §4.D
// "End-of-document"). No separator symbol is added to the graph.
func (b *Builder) EndDocument() {
	b.g.SetFinal(b.last, true)
	b.obs.EndDocument(b.docs)
	b.docs++
	b.last = 0
}

// Finalize locks the builder, computes endpos-class counts via the
// reverse-topological pass over failure links (spec.md §4.D "Counts"),
// and returns a read-only Graph.
func (b *Builder) Finalize() (*Graph, error) {
	if b.final {
		return nil, fmt.Errorf("dawg: Finalize called twice: %w", dawgerr.ErrInvalidArgument)
	}
	if !b.g.IsFinal(b.last) && b.last != 0 {
		// Mark an unterminated final document's last state as a sink, as
		// EndDocument would. The count pass does not read this flag.
		b.g.SetFinal(b.last, true)
	}
	b.final = true

	if b.cfg.TrackCounts {
		arena.ComputeCounts(b.g)
	}
	if err := b.g.Flush(); err != nil {
		return nil, err
	}
	return &Graph{g: b.g, cfg: b.cfg}, nil
}
