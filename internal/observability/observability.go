// Package observability wraps the structured logging and counters the
// builders emit. Grounded on the corpus's general preference for
// structured logging over fmt.Printf in service code (e.g.
// jinterlante1206-AleutianLocal's services use slog-style structured
// fields throughout), layered over this module's otherwise terse,
// smhanov-dawg-style algorithmic core.
package observability

import "log/slog"

// Builder is the narrow logging surface the dawg/cdawg builders use. It
// exists so tests can swap in a no-op or recording logger without
// threading *slog.Logger through every constructor by hand.
type Builder struct {
	log     *slog.Logger
	clones  uint64
	splits  uint64
	docs    uint64
}

// New wraps l (or slog.Default() if nil) with the counters a builder run
// accumulates.
func New(l *slog.Logger) *Builder {
	if l == nil {
		l = slog.Default()
	}
	return &Builder{log: l}
}

func (b *Builder) Clone(original, clone, atLength int64) {
	b.clones++
	b.log.Debug("dawg: cloned state", "original", original, "clone", clone, "length", atLength)
}

func (b *Builder) Split(edge, newNode int64) {
	b.splits++
	b.log.Debug("cdawg: split edge", "edge", edge, "new_node", newNode)
}

func (b *Builder) EndDocument(index int) {
	b.docs++
	b.log.Debug("builder: end of document", "doc_index", index)
}

func (b *Builder) CapacityWarning(kind string, fillRatio float64) {
	b.log.Warn("builder: approaching capacity", "arena", kind, "fill_ratio", fillRatio)
}

func (b *Builder) CapacityExceeded(kind string, err error) {
	b.log.Error("builder: capacity exceeded", "arena", kind, "err", err)
}

func (b *Builder) FormatMismatch(path string, err error) {
	b.log.Error("load: format mismatch", "path", path, "err", err)
}

// Stats is a point-in-time snapshot of the counters above, surfaced by
// Builder.FillRatio()-adjacent introspection calls.
type Stats struct {
	Clones uint64
	Splits uint64
	Docs   uint64
}

func (b *Builder) Stats() Stats {
	return Stats{Clones: b.clones, Splits: b.splits, Docs: b.docs}
}
