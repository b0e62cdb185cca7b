package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process holds the subject lock.
var ErrLocked = errors.New("subject is locked by another writer")

const lockName = ".actigraphy.lock"

// SubjectLock is an exclusive advisory lock on one subject directory.
type SubjectLock struct {
	lock *flock.Flock
	path string
}

// LockSubject takes the writer lock for dir without blocking.
func LockSubject(dir string) (*SubjectLock, error) {
	lockPath := filepath.Join(dir, lockName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
	}
	return &SubjectLock{lock: lock, path: lockPath}, nil
}

// Path returns the lock file location.
func (l *SubjectLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Unlock releases the lock. It is safe to call more than once.
func (l *SubjectLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// CheckWritable verifies that dir exists and is a writable directory.
func CheckWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s: insufficient permissions: %w", dir, err)
	}
	return nil
}
