// Package domain provides the domain layer for tab recency.
// It contains the identifiers, snapshots, and events shared by the store,
// the persistence adapters, and the browser platform adapters.
package domain

import (
	"fmt"
	"strconv"
)

// WindowID identifies a top-level browser window.
type WindowID int64

// TabID identifies a tab. The browser may reuse an id once the tab closes,
// so a remembered TabID can be stale.
type TabID int64

// String returns the decimal representation of the window id.
func (w WindowID) String() string {
	return strconv.FormatInt(int64(w), 10)
}

// String returns the decimal representation of the tab id.
func (t TabID) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// ParseWindowID parses a decimal window id.
func ParseWindowID(s string) (WindowID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return WindowID(n), nil
}

// ParseTabID parses a decimal tab id.
func ParseTabID(s string) (TabID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tab id %q: %w", s, err)
	}
	return TabID(n), nil
}

// TabRef is a tab as reported by the browser platform.
type TabRef struct {
	ID       TabID    `json:"id"`
	WindowID WindowID `json:"windowId"`
}
