// Package token defines the symbol type consumed by the automaton core.
//
// The core never tokenizes text itself (spec: tokenizers are an external
// collaborator); it only consumes a sequence of unsigned integers, one of
// which is reserved as the end-of-document separator.
package token

import "encoding/binary"

// Token is an input symbol identifier. The physical width (16 vs 32 bits)
// is a configuration choice (config.Options.TokenWidth) that sets how the
// CDAWG's training vector encodes tokens; builders do not check incoming
// tokens against it. Every arena/store record uses the 32-bit
// representation so a single non-generic arena implementation can serve
// both widths.
type Token = uint32

// Width enumerates the two vocabulary widths spec.md §6 allows.
type Width uint8

const (
	Width16 Width = 16
	Width32 Width = 32
)

// Max returns the largest symbol value representable at this width.
func (w Width) Max() Token {
	if w == Width16 {
		return 0xFFFF
	}
	return 0xFFFFFFFF
}

// Fits reports whether t is representable at width w.
func (w Width) Fits(t Token) bool {
	return t <= w.Max()
}

// DefaultSeparator is the conventional reserved document-boundary symbol
// ($) used when config.Options.DocumentSeparator is left at its zero value
// of 0 would otherwise collide with a legitimate token id; callers with a
// vocabulary that needs symbol 0 must pick a separator explicitly.
const DefaultSeparator Token = 0

// Encode packs t into its w-wide little-endian wire representation, used by
// the CDAWG's training-token vector store.
func Encode(t Token, w Width) []byte {
	if w == Width16 {
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(t))
		return buf
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, t)
	return buf
}

// Decode unpacks a w-wide little-endian record back into a Token.
func Decode(buf []byte, w Width) Token {
	if w == Width16 {
		return Token(binary.LittleEndian.Uint16(buf))
	}
	return binary.LittleEndian.Uint32(buf)
}
