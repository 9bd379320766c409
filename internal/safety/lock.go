package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
)

// ErrSessionActive means another interactive session holds the root.
var ErrSessionActive = errors.New("another interactive session is already running on this root")

// SessionLock is an advisory lock on one scan root.
type SessionLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for root, keyed by a hash of its
// absolute path so distinct roots never contend.
func LockPath(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("size-check-%016x.lock", xxhash.Sum64String(root)))
}

// AcquireSessionLock takes the lock for root without blocking.
// It returns ErrSessionActive when the lock is already held.
func AcquireSessionLock(root string) (*SessionLock, error) {
	path := LockPath(root)
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrSessionActive
	}
	return &SessionLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *SessionLock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file. It is safe to call twice.
func (l *SessionLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	err := l.lock.Unlock()
	_ = os.Remove(l.path)
	l.lock = nil
	return err
}
