// Package dawgerr collects the sentinel errors returned across the module.
//
// Following the convention used throughout the example corpus (see
// katalvlaran/lvlath's per-package errors.go files): only package-level
// sentinels are exported, callers branch with errors.Is, and context is
// attached at the call site with fmt.Errorf("...: %w", ...) rather than by
// baking detail into the sentinel message itself.
package dawgerr

import "errors"

var (
	// ErrCapacityExceeded is returned when a disk-backed arena or store
	// would grow past its pre-allocated capacity. Fatal to the current build.
	ErrCapacityExceeded = errors.New("rustydawg: arena capacity exceeded")

	// ErrIO wraps an underlying file/mmap operation failure.
	ErrIO = errors.New("rustydawg: io failure")

	// ErrFormatMismatch is returned by Load when a file's magic, version,
	// or element size does not match what the reader expects.
	ErrFormatMismatch = errors.New("rustydawg: on-disk format mismatch")

	// ErrInvalidArgument covers an unknown backend passed to New, feeding
	// the document separator to AddToken, and AddToken or Finalize called
	// after Finalize. A token-width mismatch at load time is reported as
	// ErrFormatMismatch (element size), not as this error.
	ErrInvalidArgument = errors.New("rustydawg: invalid argument")

	// ErrNotFinalized names the state of a graph before Finalize. No
	// function in this module returns it: queries exist only on the Graph
	// that Finalize or LoadFrom returns.
	ErrNotFinalized = errors.New("rustydawg: graph not finalized")
)

// Invariant is the payload of a panic raised when an internal consistency
// check fails during construction. Per spec.md §7, invariant violations are
// programmer bugs, not user errors: they are never returned as an error
// value, only panicked with enough detail to diagnose.
type Invariant struct {
	What string
}

func (i Invariant) Error() string {
	return "rustydawg: invariant violation: " + i.What
}

// Violate panics with an Invariant describing what went wrong. Centralizing
// this keeps the call sites ("duplicate edge symbol", "null node reached
// during failure walk", ...) to a single short statement.
func Violate(what string) {
	panic(Invariant{What: what})
}
