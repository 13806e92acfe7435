// Package weight defines the per-node metadata layouts of spec.md §4.C:
// Basic (length + failure link), Counting (+ occurrence count), and Cdawg
// (+ first-occurrence position). A builder selects one Layout up front;
// the arena physically stores the superset of fields (see arena's node
// record type) so
// a single Store of fixed-size records serves every layout, and these
// types are the logical views callers actually see.
package weight

import "github.com/viking-sudo-rm/rusty-dawg/store"

// Layout selects which logical weight shape a graph was built with. It is
// recorded in the on-disk header's flag bits (diskfmt.FlagCounts /
// diskfmt.FlagCdawg).
type Layout uint8

const (
	// LayoutBasic carries only length and failure link.
	LayoutBasic Layout = iota
	// LayoutCounting additionally tracks an occurrence count per state.
	LayoutCounting
	// LayoutCdawg additionally tracks a first-occurrence position, reported
	// by Occurrences. CDAWG edge ranges are stored on the edges themselves
	// and are not derived from it.
	LayoutCdawg
)

func (l Layout) TracksCounts() bool { return l == LayoutCounting || l == LayoutCdawg }
func (l Layout) IsCdawg() bool      { return l == LayoutCdawg }

// Basic is the longest-substring-length / suffix-link pair every state
// carries, regardless of layout.
type Basic struct {
	Length  uint32
	Failure store.Index
}

// Counting adds the endpos-class size (spec.md §3 invariant 7).
type Counting struct {
	Basic
	Count uint64
}

// Cdawg adds the absolute end-position of one witnessed occurrence. It is
// what Occurrences yields; an edge's [start, end) range is stored on the
// edge and does not consult it.
type Cdawg struct {
	Counting
	FirstOcc uint64
}
