package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockAcquireRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	lock := NewLock(dir)

	require.NoError(t, lock.Acquire(context.Background()))
	_, err := os.Stat(dir)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestLockTimesOutWhileHeld(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	holder := NewLock(dir)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	waiter := &Lock{dir: dir, timeout: 120 * time.Millisecond}
	err := waiter.Acquire(context.Background())
	require.ErrorIs(t, err, ErrLockTimeout)
}

func TestLockRespectsContext(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	holder := NewLock(dir)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	err := NewLock(dir).Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLockBreaksStaleDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	require.NoError(t, os.Mkdir(dir, FileModeDir))
	old := time.Now().Add(-2 * lockStaleAfter)
	require.NoError(t, os.Chtimes(dir, old, old))

	lock := &Lock{dir: dir, timeout: 200 * time.Millisecond}
	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
}

func TestWithLockRunsFn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	called := false
	require.NoError(t, WithLock(context.Background(), dir, func() error {
		called = true
		_, err := os.Stat(dir)
		return err
	}))
	require.True(t, called)
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}
