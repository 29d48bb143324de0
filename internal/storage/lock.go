package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	lockTimeout = 10 * time.Second
	lockRetry   = 50 * time.Millisecond
	// lockStaleAfter is the age past which a leftover lock directory from a
	// crashed process is broken.
	lockStaleAfter = 30 * time.Second
)

// ErrLockTimeout is returned when the lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock timeout")

// Lock is a directory-based inter-process lock. os.Mkdir is atomic, so only
// one process can create the directory at a time.
type Lock struct {
	dir     string
	timeout time.Duration
}

// NewLock creates a new lock at the given directory path.
func NewLock(dir string) *Lock {
	return &Lock{dir: dir, timeout: lockTimeout}
}

// Acquire creates the lock directory, retrying until the timeout elapses or
// ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	deadline := time.Now().Add(l.timeout)
	for {
		err := os.Mkdir(l.dir, FileModeDir)
		if err == nil {
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock directory: %w", err)
		}
		if l.breakStale() {
			continue
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, l.dir)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (l *Lock) breakStale() bool {
	info, err := os.Stat(l.dir)
	if err != nil || time.Since(info.ModTime()) < lockStaleAfter {
		return false
	}
	return os.Remove(l.dir) == nil
}

// Release releases the lock by removing the directory.
func (l *Lock) Release() error {
	return os.Remove(l.dir)
}

// WithLock executes fn while holding the lock.
func WithLock(ctx context.Context, dir string, fn func() error) error {
	lock := NewLock(dir)
	if err := lock.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer lock.Release()
	return fn()
}
