// Package diskfmt defines the small fixed-size header that precedes every
// disk-backed array in this module (nodes.bin, edges.bin, train.vec), per
// spec.md §6 "Persistent on-disk layout".
package diskfmt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/viking-sudo-rm/rusty-dawg/dawgerr"
)

// Magic identifies the format. Four ASCII bytes, chosen distinctly from the
// teacher's own (undeclared) magic so the two are never confused on disk.
var Magic = [4]byte{'R', 'D', 'W', 'G'}

// Version is bumped whenever the fixed-size record layout changes in a
// backwards-incompatible way.
const Version uint32 = 1

// Flag bits, per spec.md §6.
const (
	FlagCounts uint32 = 1 << 0
	FlagCdawg  uint32 = 1 << 1
)

// HeaderSize is the on-disk size in bytes of a Header.
const HeaderSize = 4 + 4 + 4 + 8 + 4

// Header precedes every record array this module persists.
type Header struct {
	Version  uint32
	ElemSize uint32
	Count    uint64
	Flags    uint32
}

// Encode writes h in little-endian wire format.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.ElemSize)
	binary.LittleEndian.PutUint64(buf[12:20], h.Count)
	binary.LittleEndian.PutUint32(buf[20:24], h.Flags)
	return buf
}

// Decode parses a Header from its wire format, validating the magic and
// version. elemSize, if non-zero, is checked against the header's recorded
// element size so callers can catch a token-width or layout mismatch early.
func Decode(buf []byte, wantElemSize uint32) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, fmt.Errorf("diskfmt: short header (%d bytes): %w", len(buf), dawgerr.ErrFormatMismatch)
	}
	if string(buf[0:4]) != string(Magic[:]) {
		return h, fmt.Errorf("diskfmt: bad magic %q: %w", buf[0:4], dawgerr.ErrFormatMismatch)
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.ElemSize = binary.LittleEndian.Uint32(buf[8:12])
	h.Count = binary.LittleEndian.Uint64(buf[12:20])
	h.Flags = binary.LittleEndian.Uint32(buf[20:24])

	if h.Version != Version {
		return h, fmt.Errorf("diskfmt: version %d, want %d: %w", h.Version, Version, dawgerr.ErrFormatMismatch)
	}
	if wantElemSize != 0 && h.ElemSize != wantElemSize {
		return h, fmt.Errorf("diskfmt: elem size %d, want %d: %w", h.ElemSize, wantElemSize, dawgerr.ErrFormatMismatch)
	}
	return h, nil
}

// ReadHeader reads and decodes a Header from the start of r.
func ReadHeader(r io.ReaderAt, wantElemSize uint32) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return Header{}, fmt.Errorf("diskfmt: read header: %w: %w", err, dawgerr.ErrIO)
	}
	return Decode(buf, wantElemSize)
}
