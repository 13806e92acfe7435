// Package config centralizes the options spec.md §6 calls "configurable
// options recognized by the core", expressed as a functional-options
// struct in the style this module's teacher and pack favor (see
// katalvlaran/lvlath's builder.Option / dijkstra.Option).
package config

import (
	"log/slog"

	"github.com/viking-sudo-rm/rusty-dawg/token"
)

// Variant selects which automaton a Builder constructs.
type Variant uint8

const (
	VariantDAWG Variant = iota
	VariantCDAWG
)

// Backend selects where the arena's stores live.
type Backend uint8

const (
	BackendRAM Backend = iota
	BackendDisk
)

// Options configures a Builder. Default() returns a valid, small,
// in-memory, 32-bit-token, counts-tracked DAWG configuration; the zero
// value differs from it (counts off, capacity ratios 0).
type Options struct {
	TokenWidth  token.Width
	Variant     Variant
	TrackCounts bool
	Backend     Backend

	// DocumentSeparator is the reserved "$" symbol. Never produced by a
	// well-behaved tokenizer mid-stream; AddToken rejects it, and document
	// boundaries are marked by calling EndDocument.
	DocumentSeparator token.Token

	// Disk-backend sizing (spec.md §6): required upper bounds, typically
	// estimated from n_tokens * ratio.
	NodeCapacity int64
	EdgeCapacity int64
	NodesRatio   float64
	EdgesRatio   float64
	Dir          string // directory holding nodes.bin / edges.bin / train.vec

	// Ambient stack.
	Logger *slog.Logger
}

// Option mutates Options; Resolve applies them over Default() to return a
// fully-populated Options value, so callers can also build one with a literal.
type Option func(*Options)

func WithTokenWidth(w token.Width) Option   { return func(o *Options) { o.TokenWidth = w } }
func WithVariant(v Variant) Option          { return func(o *Options) { o.Variant = v } }
func WithCounts(track bool) Option          { return func(o *Options) { o.TrackCounts = track } }
func WithSeparator(sep token.Token) Option  { return func(o *Options) { o.DocumentSeparator = sep } }
func WithLogger(l *slog.Logger) Option      { return func(o *Options) { o.Logger = l } }

// WithDiskBackend switches to a pre-sized, memory-mapped on-disk arena.
func WithDiskBackend(dir string, nodeCapacity, edgeCapacity int64) Option {
	return func(o *Options) {
		o.Backend = BackendDisk
		o.Dir = dir
		o.NodeCapacity = nodeCapacity
		o.EdgeCapacity = edgeCapacity
	}
}

// WithCapacityRatios sets the n_tokens-scaled estimators spec.md §6 names
// for pre-sizing a disk build from an expected token count.
func WithCapacityRatios(nodesRatio, edgesRatio float64) Option {
	return func(o *Options) { o.NodesRatio, o.EdgesRatio = nodesRatio, edgesRatio }
}

// Default returns the baseline Options: 32-bit tokens, DAWG, counts
// tracked, RAM-backed, separator 0, node/edge capacity ratios 2 and 3.
func Default() Options {
	return Options{
		TokenWidth:  token.Width32,
		Variant:     VariantDAWG,
		TrackCounts: true,
		Backend:     BackendRAM,
		NodesRatio:  2.0,
		EdgesRatio:  3.0,
		Logger:      slog.Default(),
	}
}

// Resolve applies opts over Default().
func Resolve(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// EstimateCapacity applies the configured ratios to an expected token
// count, for callers pre-sizing a disk build (spec.md §6).
func (o Options) EstimateCapacity(nTokens int64) (nodeCapacity, edgeCapacity int64) {
	nodeCapacity = int64(float64(nTokens) * o.NodesRatio)
	edgeCapacity = int64(float64(nTokens) * o.EdgesRatio)
	if nodeCapacity < 16 {
		nodeCapacity = 16
	}
	if edgeCapacity < 16 {
		edgeCapacity = 16
	}
	return
}
