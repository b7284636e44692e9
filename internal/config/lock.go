package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created next to the user config while it is rewritten.
const LockFileName = ".config.lock"

// FileLock serializes writers of the user config across processes.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewUserConfigLock returns the lock guarding the user config directory.
func NewUserConfigLock() *FileLock {
	return NewFileLock(GetUserConfigDir())
}

// NewFileLock returns a lock at <dir>/.config.lock.
func NewFileLock(dir string) *FileLock {
	p := filepath.Join(dir, LockFileName)
	return &FileLock{path: p, flock: flock.New(p)}
}

// TryLock acquires the lock without blocking. It returns false when another
// process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = ok
	return ok, nil
}

// Unlock releases the lock. Calling it on an unheld lock is a no-op.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether this FileLock holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.locked
}
