// Package runlock keeps two real runs from working on the same target tree
// at once. The lock file lives in the OS temp directory, keyed by the
// absolute target path, so neither tree is touched.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"filetamer/pkg/errors"

	"github.com/gofrs/flock"
)

// Lock is an advisory, exclusive, non-blocking lock for one target.
type Lock struct {
	flock  *flock.Flock
	path   string
	target string
}

// PathFor returns the lock file used for target.
func PathFor(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "filetamer-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// New returns an unacquired lock for target.
func New(target string) (*Lock, error) {
	path, err := PathFor(target)
	if err != nil {
		return nil, err
	}
	return &Lock{flock: flock.New(path), path: path, target: target}, nil
}

// Acquire takes the lock or fails with a LOCKED error if another process
// holds it.
func Acquire(target string) (*Lock, error) {
	l, err := New(target)
	if err != nil {
		return nil, err
	}
	if err := l.TryLock(); err != nil {
		return nil, err
	}
	return l, nil
}

// TryLock attempts the lock without blocking.
func (l *Lock) TryLock() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	if !acquired {
		return errors.Newf(errors.ErrLocked, "another run is already working on %s", l.target).
			WithDetail("lockFile", l.path)
	}
	return nil
}

// Unlock releases the lock. The lock file is left in place.
func (l *Lock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
