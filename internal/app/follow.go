package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/fsnotify/fsnotify"
)

// SnapshotSource provides the current snapshot. *Handler implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// FollowOptions holds all parameters for follow behavior.
type FollowOptions struct {
	Source SnapshotSource
	// WatchPath is the file to watch for changes. When empty, or when the
	// watcher cannot be set up, the snapshot is polled every Interval.
	WatchPath string
	Interval  time.Duration
	Output    io.Writer
	// Render formats a snapshot for printing. Defaults to compact JSON.
	Render func(domain.Snapshot) string
	// TickChan replaces the poll ticker in tests.
	TickChan <-chan time.Time
}

// Follow prints the snapshot whenever it changes until ctx is done or the
// process receives SIGINT/SIGTERM.
func Follow(ctx context.Context, opts FollowOptions) error {
	if opts.Source == nil {
		panic("Follow: source dependency cannot be nil")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Render == nil {
		opts.Render = renderJSON
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	colors.Info("Following tab history (Ctrl+C to stop)...")

	changes, cleanup := followTrigger(opts)
	defer cleanup()

	f := &follower{opts: opts}
	f.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigChan:
			_, _ = fmt.Fprintf(opts.Output, "\nReceived signal %v, stopping...\n", sig)
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			f.refresh(ctx)
		}
	}
}

type follower struct {
	opts    FollowOptions
	last    domain.Snapshot
	printed bool
}

func (f *follower) refresh(ctx context.Context) {
	snapshot, err := f.opts.Source.Snapshot(ctx)
	if err != nil {
		colors.Warning(fmt.Sprintf("follow: %v", err))
		return
	}
	if f.printed && snapshot.Equal(f.last) {
		return
	}
	f.last = snapshot
	f.printed = true
	_, _ = fmt.Fprintln(f.opts.Output, f.opts.Render(snapshot))
}

// followTrigger returns a channel that fires when the snapshot may have
// changed.
func followTrigger(opts FollowOptions) (<-chan struct{}, func()) {
	if opts.TickChan != nil {
		return forwardTicks(opts.TickChan)
	}
	if opts.WatchPath != "" {
		ch, cleanup, err := watchFile(opts.WatchPath)
		if err == nil {
			return ch, cleanup
		}
		colors.Warning(fmt.Sprintf("follow: cannot watch %s, polling instead: %v", opts.WatchPath, err))
	}
	ticker := time.NewTicker(opts.Interval)
	ch, stop := forwardTicks(ticker.C)
	return ch, func() {
		ticker.Stop()
		stop()
	}
}

func forwardTicks(ticks <-chan time.Time) (<-chan struct{}, func()) {
	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-ticks:
				if !ok {
					close(out)
					return
				}
				notify(out)
			}
		}
	}()
	return out, func() { close(done) }
}

// watchFile watches the directory holding path. Watching the directory keeps
// working across atomic renames, which replace the file's inode.
func watchFile(path string) (<-chan struct{}, func(), error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	target := filepath.Clean(path)
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					notify(out)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				colors.Debug(fmt.Sprintf("follow: watcher error: %v", err))
			}
		}
	}()
	return out, func() { watcher.Close() }, nil
}

// notify does a non-blocking send; one pending signal is enough.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func renderJSON(snapshot domain.Snapshot) string {
	raw, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(raw)
}
