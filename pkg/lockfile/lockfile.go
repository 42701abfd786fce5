// Package lockfile provides an advisory, OS-level lock used to enforce
// "exactly one index writer per index directory at a time" (spec.md §5).
// It is backed by flock(2) so the lock is automatically released if the
// holding process dies, unlike a plain lock-file-exists convention.
package lockfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when another process already holds
// the lock.
var ErrLocked = fmt.Errorf("lockfile: index directory is locked by another writer")

// Lock represents a held advisory lock on a file. Close releases it.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive, non-blocking lock on path, creating the
// file if necessary. It returns ErrLocked if another process already
// holds the lock.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lockfile: opening %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lockfile: locking %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Close releases the lock and closes the underlying file.
func (l *Lock) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
