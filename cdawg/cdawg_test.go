package cdawg_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viking-sudo-rm/rusty-dawg/automaton"
	"github.com/viking-sudo-rm/rusty-dawg/cdawg"
	"github.com/viking-sudo-rm/rusty-dawg/config"
	"github.com/viking-sudo-rm/rusty-dawg/dawg"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

func toks(s string) []token.Token {
	out := make([]token.Token, len(s))
	for i, r := range []byte(s) {
		out[i] = token.Token(r)
	}
	return out
}

func buildCdawg(t *testing.T, docs ...string) *cdawg.Graph {
	t.Helper()
	b, err := cdawg.New()
	require.NoError(t, err)
	for i, doc := range docs {
		for _, tok := range toks(doc) {
			require.NoError(t, b.AddToken(tok))
		}
		if i < len(docs)-1 {
			b.EndDocument()
		}
	}
	if len(docs) > 0 {
		b.EndDocument()
	}
	g, err := b.Finalize()
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func buildDawgRef(t *testing.T, docs ...string) *dawg.Graph {
	t.Helper()
	b, err := dawg.New()
	require.NoError(t, err)
	for i, doc := range docs {
		for _, tok := range toks(doc) {
			require.NoError(t, b.AddToken(tok))
		}
		if i < len(docs)-1 {
			b.EndDocument()
		}
	}
	if len(docs) > 0 {
		b.EndDocument()
	}
	g, err := b.Finalize()
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func TestEmptyAfterInit(t *testing.T) {
	g := buildCdawg(t)
	require.Equal(t, 1, g.NumNodes())
	_, ok := g.Follow(automaton.Source, toks("x"))
	require.False(t, ok)
	require.Zero(t, g.Count(automaton.Source))
}

func TestSingleToken(t *testing.T) {
	g := buildCdawg(t, "a")
	s, ok := g.Transition(automaton.Source, token.Token('a'))
	require.True(t, ok)
	require.EqualValues(t, 1, g.Count(s))
}

func TestRepeat(t *testing.T) {
	g := buildCdawg(t, "aaa")
	for _, tc := range []struct {
		pattern string
		matched int
		count   uint64
	}{
		{"a", 1, 3},
		{"aa", 2, 2},
		{"aaa", 3, 1},
	} {
		s, matched := g.LongestSuffixMatch(automaton.Source, toks(tc.pattern))
		require.Equal(t, tc.matched, matched, tc.pattern)
		require.Equal(t, tc.count, g.Count(s), tc.pattern)
	}
}

func TestClonePath(t *testing.T) {
	g := buildCdawg(t, "ababc")

	s, matched := g.LongestSuffixMatch(automaton.Source, toks("ab"))
	require.Equal(t, 2, matched)
	require.EqualValues(t, 2, g.Count(s))

	s, matched = g.LongestSuffixMatch(automaton.Source, toks("ba"))
	require.Equal(t, 2, matched)
	require.EqualValues(t, 1, g.Count(s))
}

func TestMultiDocument(t *testing.T) {
	g := buildCdawg(t, "ab", "ac")

	s, ok := g.Follow(automaton.Source, toks("a"))
	require.True(t, ok)
	require.EqualValues(t, 2, g.Count(s))

	s, ok = g.Follow(automaton.Source, toks("ab"))
	require.True(t, ok)
	require.EqualValues(t, 1, g.Count(s))

	_, ok = g.Follow(automaton.Source, toks("ba"))
	require.False(t, ok)
}

func TestLongestSuffixQuery(t *testing.T) {
	g := buildCdawg(t, "the quick brown fox")
	_, matched := g.LongestSuffixMatch(automaton.Source, toks("z brown"))
	require.Equal(t, 5, matched)
}

// TestCrossVariantAgreement checks spec.md §8's cross-variant invariant:
// DAWG and CDAWG built on the same corpus agree on (matched_length, count)
// for every query pattern.
func TestCrossVariantAgreement(t *testing.T) {
	corpus := "the quick brown fox jumps over the lazy dog"
	d := buildDawgRef(t, corpus)
	c := buildCdawg(t, corpus)

	patterns := []string{"the", "quick", "o", "dog", "zzz", "fox jumps", "the quick brown"}
	for _, p := range patterns {
		_, dMatched := d.LongestSuffixMatch(automaton.Source, toks(p))
		_, cMatched := c.LongestSuffixMatch(automaton.Source, toks(p))
		require.Equal(t, dMatched, cMatched, "pattern %q matched_length", p)

		dState, _ := d.LongestSuffixMatch(automaton.Source, toks(p))
		cState, _ := c.LongestSuffixMatch(automaton.Source, toks(p))
		require.Equal(t, d.Count(dState), c.Count(cState), "pattern %q count", p)
	}
}

// TestSaveToLoadFromRoundTrip mirrors dawg's: a RAM-backed graph's SaveTo
// must materialize real bytes (store.RAM.Flush is a no-op), LoadFrom on
// them must answer queries identically, and nodes.bin/edges.bin must be
// byte-identical to an equivalently-sized disk-backed build of the same
// corpus.
//
// The corpus is all-distinct characters so every AddToken call creates
// exactly one node and edge with no split or implicit extension: node
// count is then corpus length + 1, which lets a disk-backed build use
// that as an exact node capacity without also starving train.vec (whose
// disk capacity piggybacks on the same argument to config.WithDiskBackend
// per cdawg/builder.go's New) below the actual token count. train.vec
// itself is not compared byte-for-byte for the same reason — its disk
// capacity has no reason to equal the node count exactly — but its
// content is still exercised indirectly by the query assertions below,
// which resolve through it on every edge traversal.
func TestSaveToLoadFromRoundTrip(t *testing.T) {
	corpus := "abcdefghijklmnopqrstuvwxyz"
	ram := buildCdawg(t, corpus)

	ramDir := t.TempDir()
	require.NoError(t, ram.SaveTo(ramDir))

	loaded, err := cdawg.LoadFrom(ramDir, config.Resolve())
	require.NoError(t, err)
	defer loaded.Close()

	for _, p := range []string{"abc", "xyz", "mno", "zzz", "a", "z"} {
		wantState, wantMatched := ram.LongestSuffixMatch(automaton.Source, toks(p))
		gotState, gotMatched := loaded.LongestSuffixMatch(automaton.Source, toks(p))
		require.Equal(t, wantMatched, gotMatched, p)
		require.Equal(t, ram.Count(wantState), loaded.Count(gotState), p)
	}

	diskDir := t.TempDir()
	db, err := cdawg.New(config.WithDiskBackend(diskDir, int64(ram.NumNodes()), int64(ram.NumEdges())))
	require.NoError(t, err)
	for _, tok := range toks(corpus) {
		require.NoError(t, db.AddToken(tok))
	}
	db.EndDocument()
	disk, err := db.Finalize()
	require.NoError(t, err)
	defer disk.Close()

	for _, name := range []string{"nodes.bin", "edges.bin"} {
		want, err := os.ReadFile(diskDir + "/" + name)
		require.NoError(t, err)
		got, err := os.ReadFile(ramDir + "/" + name)
		require.NoError(t, err)
		require.Equal(t, want, got, name)
	}
}

func TestAddTokenRejectsSeparator(t *testing.T) {
	b, err := cdawg.New()
	require.NoError(t, err)
	require.Error(t, b.AddToken(token.DefaultSeparator))
}

func TestAddTokenAfterFinalize(t *testing.T) {
	b, err := cdawg.New()
	require.NoError(t, err)
	_, err = b.Finalize()
	require.NoError(t, err)
	require.Error(t, b.AddToken(token.Token('a')))
}
