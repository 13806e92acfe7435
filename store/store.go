// Package store implements the append-only, fixed-size-record backing
// array used by the arena graph (spec.md §4.A). Two implementations share
// one interface: an in-memory RAM store and a pre-allocated, memory-mapped
// disk store, so the arena's algorithms never need to know which one they
// are talking to.
package store

import (
	"fmt"
	"os"

	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/diskfmt"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

// Index addresses a single fixed-size record within a Store. It is the
// only form of "pointer" used by this module; indices are stable across
// appends and, for disk stores, across process restarts.
type Index int64

// NullIndex marks the absence of a record (a null NodeIndex/EdgeIndex is
// built from this by the arena package).
const NullIndex Index = -1

// Store is a uniform array abstraction over RAM or a memory-mapped file.
// Implementations are strictly append-only with respect to Len growth;
// Set may mutate any previously-pushed record in place.
type Store interface {
	// Push appends rec (which must be exactly ElemSize() bytes) and
	// returns its index.
	Push(rec []byte) (Index, error)

	// Get returns the record at i. The returned slice must not be
	// retained past the next mutating call on the store.
	Get(i Index) []byte

	// Set overwrites the record at i in place. i must already have been
	// returned by a prior Push.
	Set(i Index, rec []byte) error

	// Len returns the number of records pushed so far.
	Len() Index

	// Reserve hints the total number of records the caller expects to
	// push, letting RAM stores pre-grow and disk stores validate
	// capacity up front.
	Reserve(n Index) error

	// Flush persists any buffered state to durable storage. A no-op for
	// RAM stores.
	Flush() error

	// Close releases any underlying file handles / mappings.
	Close() error

	// ElemSize returns the fixed record size in bytes.
	ElemSize() int

	// FillRatio reports Len()/Capacity() for disk-backed stores (0 for
	// RAM stores, which never have a fixed capacity), so a caller building
	// a disk-backed index can pre-size future runs. Spec.md §5.
	FillRatio() float64
}

// TokenWidthElemSize is a small helper shared by callers that need to pick
// a training-vector record size from a configured token.Width.
func TokenWidthElemSize(w token.Width) int {
	if w == token.Width16 {
		return 2
	}
	return 4
}

// WriteTo materializes every record currently in s to a freshly created
// file at path, in the same header+records layout CreateDisk produces.
// Unlike the pre-allocated capacity CreateDisk reserves up front, the file
// is sized exactly to s.Len() records: this is a point-in-time save, not a
// store a builder will keep appending to.
//
// s may be a RAM store (whose Flush is a no-op, so this is the only way
// its records ever reach disk) or a Disk store (whose records already live
// at some other path from construction); either way, WriteTo is what
// makes dawg.Graph.SaveTo/cdawg.Graph.SaveTo's dir argument mean "the
// current records land here," independent of the backend that built them.
func WriteTo(s Store, path string, flags uint32) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("store: create %s: %w: %w", path, err, dawgerr.ErrIO)
	}
	defer f.Close()

	n := s.Len()
	hdr := diskfmt.Header{Version: diskfmt.Version, ElemSize: uint32(s.ElemSize()), Count: uint64(n), Flags: flags}
	if _, err := f.WriteAt(hdr.Encode(), 0); err != nil {
		return fmt.Errorf("store: write header %s: %w: %w", path, err, dawgerr.ErrIO)
	}
	for i := Index(0); i < n; i++ {
		off := int64(diskfmt.HeaderSize) + int64(i)*int64(s.ElemSize())
		if _, err := f.WriteAt(s.Get(i), off); err != nil {
			return fmt.Errorf("store: write record %d to %s: %w: %w", i, path, err, dawgerr.ErrIO)
		}
	}
	return f.Sync()
}
