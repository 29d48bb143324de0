// Package recency keeps the bounded per-window history of recently active
// tabs and decides which tab to switch back to.
package recency

import (
	"context"
	"fmt"
	"slices"

	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/ports"
)

const (
	// HistoryLimit is the maximum number of tabs remembered per window.
	HistoryLimit = 10
	// SnapshotKey is the key the snapshot is persisted under.
	SnapshotKey = "tabs"
)

// Store maps each window to its recency sequence, most recent last.
// A Store is not safe for concurrent use; it is rebuilt for every event.
type Store struct {
	data   domain.Snapshot
	dedupe bool
}

// Option configures a Store.
type Option func(*Store)

// WithDedupe makes PushRecentTab drop earlier occurrences of the pushed tab,
// so each tab appears at most once per window.
func WithDedupe(enabled bool) Option {
	return func(s *Store) {
		s.dedupe = enabled
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{data: domain.Snapshot{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted snapshot from kv. A missing record yields an
// empty store.
func Restore(ctx context.Context, kv ports.KeyValueStore, opts ...Option) (*Store, error) {
	s := New(opts...)
	raw, ok, err := kv.Load(ctx, SnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("restore recency: %w", err)
	}
	if !ok {
		return s, nil
	}
	snapshot, err := domain.DecodeSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("restore recency: %w", err)
	}
	s.SetAll(snapshot)
	return s, nil
}

// Persist writes the full snapshot to kv.
func (s *Store) Persist(ctx context.Context, kv ports.KeyValueStore) error {
	raw, err := domain.EncodeSnapshot(s.data)
	if err != nil {
		return fmt.Errorf("persist recency: %w", err)
	}
	if err := kv.Save(ctx, SnapshotKey, raw); err != nil {
		return fmt.Errorf("persist recency: %w", err)
	}
	return nil
}

// GetAll returns a copy of every window's sequence.
func (s *Store) GetAll() domain.Snapshot {
	return s.data.Clone()
}

// Get returns a copy of the window's sequence, or an empty sequence.
func (s *Store) Get(windowID domain.WindowID) []domain.TabID {
	tabs := s.data[windowID]
	if len(tabs) == 0 {
		return []domain.TabID{}
	}
	return slices.Clone(tabs)
}

// SetAll replaces the whole store with snapshot.
func (s *Store) SetAll(snapshot domain.Snapshot) {
	s.data = snapshot.Clone()
}

// Set replaces one window's sequence. Only the last HistoryLimit entries are
// kept, and an empty sequence removes the window.
func (s *Store) Set(windowID domain.WindowID, tabs []domain.TabID) {
	if len(tabs) == 0 {
		delete(s.data, windowID)
		return
	}
	if len(tabs) > HistoryLimit {
		tabs = tabs[len(tabs)-HistoryLimit:]
	}
	s.data[windowID] = slices.Clone(tabs)
}

// PushRecentTab appends tabID to the window's sequence, creating it if
// needed. A full sequence drops its oldest entry first.
func (s *Store) PushRecentTab(windowID domain.WindowID, tabID domain.TabID) {
	tabs := s.data[windowID]
	if s.dedupe {
		tabs = slices.DeleteFunc(tabs, func(t domain.TabID) bool { return t == tabID })
	}
	if len(tabs) >= HistoryLimit {
		tabs = tabs[len(tabs)-HistoryLimit+1:]
	}
	s.data[windowID] = append(slices.Clone(tabs), tabID)
}

// ForgetTabs removes the window's entry. Unknown windows are ignored.
func (s *Store) ForgetTabs(windowID domain.WindowID) {
	delete(s.data, windowID)
}
