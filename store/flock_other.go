//go:build !unix

package store

// flockExclusive is a no-op on platforms without an advisory-lock syscall
// wired up here; the disk store still enforces capacity and single-writer
// discipline at the application level.
func flockExclusive(fd uintptr) error { return nil }

func funlock(fd uintptr) error { return nil }
