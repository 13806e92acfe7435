package dawg_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viking-sudo-rm/rusty-dawg/automaton"
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

func buildDawg(t *testing.T, docs ...string) *dawg.Graph {
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
	g := buildDawg(t)
	require.Equal(t, 1, g.NumNodes())
	_, ok := g.Follow(automaton.Source, toks("x"))
	require.False(t, ok)
	require.Zero(t, g.Count(automaton.Source))
}

func TestSingleToken(t *testing.T) {
	g := buildDawg(t, "a")
	require.Equal(t, 2, g.NumNodes())
	s, ok := g.Transition(automaton.Source, token.Token('a'))
	require.True(t, ok)
	require.EqualValues(t, 1, g.Count(s))
}

func TestRepeat(t *testing.T) {
	g := buildDawg(t, "aaa")
	require.Equal(t, 4, g.NumNodes())

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

func TestOccurrencesEnumeratesFullEndposClass(t *testing.T) {
	g := buildDawg(t, "aaa")
	s, matched := g.LongestSuffixMatch(automaton.Source, toks("a"))
	require.Equal(t, 1, matched)
	require.EqualValues(t, 3, g.Count(s))

	var collected []uint64
	for pos := range g.Occurrences(s, -1) {
		collected = append(collected, pos)
	}
	require.Len(t, collected, int(g.Count(s)))
	require.ElementsMatch(t, []uint64{1, 2, 3}, collected)
}

func TestClonePath(t *testing.T) {
	g := buildDawg(t, "ababc")

	s, matched := g.LongestSuffixMatch(automaton.Source, toks("ab"))
	require.Equal(t, 2, matched)
	require.EqualValues(t, 2, g.Count(s))

	s, matched = g.LongestSuffixMatch(automaton.Source, toks("ba"))
	require.Equal(t, 2, matched)
	require.EqualValues(t, 1, g.Count(s))
}

func TestMultiDocument(t *testing.T) {
	g := buildDawg(t, "ab", "ac")

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
	g := buildDawg(t, "the quick brown fox")
	_, matched := g.LongestSuffixMatch(automaton.Source, toks("z brown"))
	require.Equal(t, 5, matched)
}

// TestSaveToLoadFromRoundTrip checks spec.md §6's save_to/load_from
// contract for the default RAM backend: SaveTo must actually materialize
// bytes (store.RAM.Flush alone is a no-op), LoadFrom on them must answer
// queries identically to the original, and the saved files must be
// byte-identical to an equivalently-sized disk-backed build of the same
// corpus (spec.md §8's cross-backend round-trip property).
func TestSaveToLoadFromRoundTrip(t *testing.T) {
	corpus := "the quick brown fox jumps over the lazy dog"
	ram := buildDawg(t, corpus)

	ramDir := t.TempDir()
	require.NoError(t, ram.SaveTo(ramDir))

	loaded, err := dawg.LoadFrom(ramDir, config.Resolve())
	require.NoError(t, err)
	defer loaded.Close()

	for _, p := range []string{"the", "quick", "o", "dog", "zzz", "fox jumps", "the quick brown"} {
		wantState, wantMatched := ram.LongestSuffixMatch(automaton.Source, toks(p))
		gotState, gotMatched := loaded.LongestSuffixMatch(automaton.Source, toks(p))
		require.Equal(t, wantMatched, gotMatched, p)
		require.Equal(t, ram.Count(wantState), loaded.Count(gotState), p)
	}

	diskDir := t.TempDir()
	db, err := dawg.New(config.WithDiskBackend(diskDir, int64(ram.NumNodes()), int64(ram.NumEdges())))
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

func TestBuildFromContext(t *testing.T) {
	b, err := dawg.New()
	require.NoError(t, err)
	err = b.BuildFrom(context.Background(), func(yield func(token.Token) bool) {
		for _, tok := range toks("hello") {
			if !yield(tok) {
				return
			}
		}
	})
	require.NoError(t, err)
	g, err := b.Finalize()
	require.NoError(t, err)
	defer g.Close()
	require.NoError(t, g.CheckInvariants())
}

func TestAddTokenRejectsSeparator(t *testing.T) {
	b, err := dawg.New()
	require.NoError(t, err)
	err = b.AddToken(token.DefaultSeparator)
	require.Error(t, err)
}

func TestAddTokenAfterFinalize(t *testing.T) {
	b, err := dawg.New()
	require.NoError(t, err)
	_, err = b.Finalize()
	require.NoError(t, err)
	require.Error(t, b.AddToken(token.Token('a')))
}
