package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Snapshot is the flat persisted form of the recency store: every window
// mapped to its tab sequence, oldest first.
//
// encoding/json writes the integer keys as decimal strings, so the JSON form
// is {"5":[1,2,3]}.
type Snapshot map[WindowID][]TabID

// Clone returns a deep copy of the snapshot. A nil snapshot clones to an
// empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for w, tabs := range s {
		out[w] = slices.Clone(tabs)
	}
	return out
}

// Equal reports whether both snapshots hold the same windows and sequences.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for w, tabs := range s {
		otherTabs, ok := other[w]
		if !ok || !slices.Equal(tabs, otherTabs) {
			return false
		}
	}
	return true
}

// Windows returns the window ids in ascending order.
func (s Snapshot) Windows() []WindowID {
	windows := make([]WindowID, 0, len(s))
	for w := range s {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })
	return windows
}

// EncodeSnapshot serializes a snapshot to its persisted JSON form.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses the persisted JSON form. Empty input and JSON null
// both decode to an empty snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	s := Snapshot{}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}
