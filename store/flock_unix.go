//go:build unix

package store

import "golang.org/x/sys/unix"

// flockExclusive takes an advisory, non-blocking exclusive lock on fd, per
// spec.md §5 ("Disk-backed stores hold an exclusive advisory lock on their
// file during writing"). Grounded on the pack's preference for real
// x/sys-backed file locking over a hand-rolled lockfile convention (see
// jinterlante1206-AleutianLocal/services/trace/lock).
func flockExclusive(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB)
}

func funlock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
