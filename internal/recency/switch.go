package recency

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/ports"
)

// SwitchResult is the outcome of a switch-target search.
type SwitchResult struct {
	Target domain.TabID
	Found  bool
	// Compacted is the window's sequence with the entries scanned past the
	// target removed. It equals the original sequence when nothing was found.
	Compacted []domain.TabID
}

// FindMostRecentSwitchTarget scans the window's sequence from the tail for
// the most recent tab that is not the active tab and still exists. Entries
// equal to the active tab and stale tabs are skipped. A failed existence
// check counts as a stale tab.
//
// The store is not modified.
func (s *Store) FindMostRecentSwitchTarget(ctx context.Context, platform ports.TabPlatform, windowID domain.WindowID, activeTabID domain.TabID) SwitchResult {
	tabs := s.Get(windowID)
	result := SwitchResult{Compacted: tabs}
	if len(tabs) < 2 {
		return result
	}

	for i := len(tabs) - 1; i >= 0; i-- {
		tabID := tabs[i]
		if tabID == activeTabID {
			continue
		}
		exists, err := platform.TabExists(ctx, tabID)
		if err != nil {
			colors.StructuredDebug("recency", "tab_exists", "failed", err, tabID.String(), map[string]interface{}{"window_id": int64(windowID)})
			continue
		}
		if exists {
			result.Target = tabID
			result.Found = true
			result.Compacted = tabs[:i+1]
			return result
		}
	}
	return result
}

// SwitchToMostRecentTab activates the switch target for the window and
// records activeTabID as the most recent tab. Nothing changes when no target
// is found or activation fails.
func (s *Store) SwitchToMostRecentTab(ctx context.Context, platform ports.TabPlatform, windowID domain.WindowID, activeTabID domain.TabID) (SwitchResult, error) {
	result := s.FindMostRecentSwitchTarget(ctx, platform, windowID, activeTabID)
	if !result.Found {
		return result, nil
	}
	if err := platform.ActivateTab(ctx, result.Target); err != nil {
		return result, fmt.Errorf("activate tab %s: %w", result.Target, err)
	}
	s.Set(windowID, result.Compacted)
	s.PushRecentTab(windowID, activeTabID)
	return result, nil
}
