package store

import (
	"fmt"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
	"github.com/viking-sudo-rm/rusty-dawg/diskfmt"
)

// Disk is a fixed-capacity, append-only record store backed by a file.
//
// During construction the file is opened read-write and pre-truncated to
// its final size (header + capacity*elemSize); records are written with
// positional WriteAt calls, matching smhanov-dawg/disk.go's pattern of
// building the whole image before a reader ever touches it. Once a build
// is finished the same bytes are reopened through golang.org/x/exp/mmap,
// exactly as smhanov-dawg's Load/Read path does, giving zero-copy queries
// that work identically whether the process restarts or not.
//
// golang.org/x/exp/mmap only exposes a read-only mapping, so the writer
// side of this store does not literally mmap while appending; it still
// honors the "fixed capacity, overflow is fatal" contract spec.md §4.A
// requires. Only the read path above is memory-mapped.
type Disk struct {
	elemSize int
	capacity Index
	flags    uint32

	// write-mode fields
	file *os.File
	n    Index

	// read-mode fields
	ro *mmap.ReaderAt
}

var _ Store = (*Disk)(nil)

// CreateDisk creates a new disk store at path with room for capacity
// records of elemSize bytes, taking an exclusive advisory lock for the
// lifetime of the build.
func CreateDisk(path string, elemSize int, capacity Index, flags uint32) (*Disk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w: %w", path, err, dawgerr.ErrIO)
	}
	if err := flockExclusive(f.Fd()); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: lock %s: %w: %w", path, err, dawgerr.ErrIO)
	}

	total := int64(diskfmt.HeaderSize) + int64(capacity)*int64(elemSize)
	if err := f.Truncate(total); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: truncate %s: %w: %w", path, err, dawgerr.ErrIO)
	}

	hdr := diskfmt.Header{Version: diskfmt.Version, ElemSize: uint32(elemSize), Count: 0, Flags: flags}
	if _, err := f.WriteAt(hdr.Encode(), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: write header %s: %w: %w", path, err, dawgerr.ErrIO)
	}

	return &Disk{elemSize: elemSize, capacity: capacity, flags: flags, file: f}, nil
}

// Flags returns the format flags this store was created with (write mode)
// or loaded with (read mode).
func (s *Disk) Flags() uint32 { return s.flags }

// OpenDisk memory-maps an existing, fully-written disk store read-only.
func OpenDisk(path string, wantElemSize int) (*Disk, error) {
	ro, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w: %w", path, err, dawgerr.ErrIO)
	}
	hdr, err := diskfmt.ReadHeader(ro, uint32(wantElemSize))
	if err != nil {
		ro.Close()
		return nil, err
	}
	return &Disk{
		elemSize: int(hdr.ElemSize),
		capacity: Index(hdr.Count),
		n:        Index(hdr.Count),
		flags:    hdr.Flags,
		ro:       ro,
	}, nil
}

func (s *Disk) ElemSize() int { return s.elemSize }
func (s *Disk) Len() Index    { return s.n }

func (s *Disk) Reserve(n Index) error {
	if s.ro != nil {
		return nil
	}
	if n > s.capacity {
		return fmt.Errorf("store: reserve %d exceeds capacity %d: %w", n, s.capacity, dawgerr.ErrCapacityExceeded)
	}
	return nil
}

func (s *Disk) Push(rec []byte) (Index, error) {
	if s.ro != nil {
		panic("store: Push on a read-only disk store")
	}
	if len(rec) != s.elemSize {
		panic("store: Disk.Push record size mismatch")
	}
	if s.n >= s.capacity {
		return 0, fmt.Errorf("store: disk store full at %d records: %w", s.capacity, dawgerr.ErrCapacityExceeded)
	}
	off := int64(diskfmt.HeaderSize) + int64(s.n)*int64(s.elemSize)
	if _, err := s.file.WriteAt(rec, off); err != nil {
		return 0, fmt.Errorf("store: write record: %w: %w", err, dawgerr.ErrIO)
	}
	idx := s.n
	s.n++
	return idx, nil
}

func (s *Disk) Get(i Index) []byte {
	buf := make([]byte, s.elemSize)
	var err error
	if s.ro != nil {
		_, err = s.ro.ReadAt(buf, int64(diskfmt.HeaderSize)+int64(i)*int64(s.elemSize))
	} else {
		_, err = s.file.ReadAt(buf, int64(diskfmt.HeaderSize)+int64(i)*int64(s.elemSize))
	}
	if err != nil {
		dawgerr.Violate(fmt.Sprintf("disk store read at %d: %v", i, err))
	}
	return buf
}

func (s *Disk) Set(i Index, rec []byte) error {
	if s.ro != nil {
		panic("store: Set on a read-only disk store")
	}
	if len(rec) != s.elemSize {
		panic("store: Disk.Set record size mismatch")
	}
	off := int64(diskfmt.HeaderSize) + int64(i)*int64(s.elemSize)
	if _, err := s.file.WriteAt(rec, off); err != nil {
		return fmt.Errorf("store: overwrite record: %w: %w", err, dawgerr.ErrIO)
	}
	return nil
}

// Flush patches the header's record count and syncs the file, so that a
// reader opening the file mid-build (or after a crash) sees a consistent
// count. It does not, by itself, mark the build as "finalized" — that
// completion marker is the caller's responsibility (spec.md §5 cancellation:
// a disk-backed partial graph without it is not considered valid).
func (s *Disk) Flush() error {
	if s.ro != nil {
		return nil
	}
	hdr := diskfmt.Header{Version: diskfmt.Version, ElemSize: uint32(s.elemSize), Count: uint64(s.n), Flags: s.flags}
	if _, err := s.file.WriteAt(hdr.Encode(), 0); err != nil {
		return fmt.Errorf("store: flush header: %w: %w", err, dawgerr.ErrIO)
	}
	return s.file.Sync()
}

func (s *Disk) Close() error {
	if s.ro != nil {
		return s.ro.Close()
	}
	if s.file != nil {
		funlock(s.file.Fd())
		return s.file.Close()
	}
	return nil
}

// FillRatio reports how full the pre-allocated capacity is, so a builder
// can surface it to a caller deciding how to pre-size future runs.
func (s *Disk) FillRatio() float64 {
	if s.capacity == 0 {
		return 0
	}
	return float64(s.n) / float64(s.capacity)
}
