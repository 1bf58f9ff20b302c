// Package lock provides a cross-process single-instance guard for the
// serve command, so two servers never load the same corpus directory at
// once. Grounded on the teacher's internal/embed/lock.go, which uses
// gofrs/flock the same way to serialize concurrent embedding-model
// downloads; here it guards the corpus directory instead of a model
// cache directory.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// InstanceLock is an exclusive, advisory file lock held for the lifetime
// of a running server process.
type InstanceLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns a lock on <dir>/.ipretrieve.lock. The file itself is
// created by TryLock.
func New(dir string) *InstanceLock {
	lockPath := filepath.Join(dir, ".ipretrieve.lock")
	return &InstanceLock{path: lockPath, flock: flock.New(lockPath)}
}

// TryLock attempts to acquire the lock without blocking. ok is false if
// another process already holds it.
func (l *InstanceLock) TryLock() (ok bool, err error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire instance lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Safe to call when not locked.
func (l *InstanceLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.flock.Unlock()
}

// Path returns the lock file path, for diagnostics.
func (l *InstanceLock) Path() string {
	return l.path
}
