// Package ports defines application boundary interfaces used by core services.
package ports

import (
	"context"

	"github.com/cristianoliveira/tab-recall/internal/domain"
)

// KeyValueStore is the durable key/value record store behind the recency
// snapshot. Load reports ok=false when the key has never been saved.
type KeyValueStore interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

// TabPlatform defines the browser tab operations needed by core services.
type TabPlatform interface {
	// ActiveTab returns the active tab of the current window. ok is false
	// when the browser reports no active tab.
	ActiveTab(ctx context.Context) (tab domain.TabRef, ok bool, err error)

	// TabExists checks whether a tab with the id is still open.
	TabExists(ctx context.Context, id domain.TabID) (bool, error)

	// ActivateTab focuses the tab within its window.
	ActivateTab(ctx context.Context, id domain.TabID) error
}

// ConfigProvider reads the handler settings (shortcut_command,
// dedupe_on_push) when the CLI builds an event handler.
type ConfigProvider interface {
	GetConfigBool(key string, defaultValue bool) bool
	GetConfigString(key, defaultValue string) string
}
