package arena_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viking-sudo-rm/rusty-dawg/arena"
	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
	"github.com/viking-sudo-rm/rusty-dawg/weight"
)

func newGraph() *arena.Graph {
	return arena.New(store.NewRAM(arena.NodeSize), store.NewRAM(arena.EdgeSize), weight.LayoutCounting)
}

func TestAddEdgeRejectsDuplicateSymbol(t *testing.T) {
	defer func() {
		require.NotNil(t, recover(), "expected a panic on duplicate symbol")
	}()
	g := newGraph()
	from := g.AddNode(0, arena.Null)
	to := g.AddNode(1, arena.Null)
	g.AddEdge(from, 1, to)
	g.AddEdge(from, 1, to) // duplicate symbol: should panic
}

// TestAVLInvariantsUnderRandomInsertion builds one node's edge tree from a
// random permutation of symbols and checks, after every insertion, that an
// in-order traversal yields strictly ascending symbols and every balance
// factor stays within {-1, 0, 1} (spec.md §3 invariant 4, §8).
func TestAVLInvariantsUnderRandomInsertion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 500

	symbols := rng.Perm(n)
	g := newGraph()
	from := g.AddNode(0, arena.Null)
	sink := g.AddNode(1, arena.Null)

	seen := make(map[token.Token]bool)
	for _, sym := range symbols {
		g.AddEdge(from, token.Token(sym), sink)
		seen[token.Token(sym)] = true

		require.NoError(t, g.CheckInvariants())

		var got []token.Token
		for s := range g.Neighbors(from) {
			got = append(got, s)
		}
		require.Len(t, got, len(seen))
		for i := 1; i < len(got); i++ {
			require.Less(t, got[i-1], got[i])
		}
	}
}

func TestComputeCounts(t *testing.T) {
	g := newGraph()
	source := g.AddNode(0, arena.Null)
	a := g.AddNode(1, source)
	b := g.AddNode(2, a)
	g.SetCount(a, 1)
	g.SetCount(b, 1)
	g.AddEdge(source, 1, a)
	g.AddEdge(a, 2, b)

	arena.ComputeCounts(g)

	require.EqualValues(t, 1, g.Count(b))
	require.EqualValues(t, 2, g.Count(a))
}

func TestFlushAndClose(t *testing.T) {
	g := newGraph()
	g.AddNode(0, arena.Null)
	require.NoError(t, g.Flush())
	require.NoError(t, g.Close())
}
