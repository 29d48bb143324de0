// Package app wires browser lifecycle events to the recency store.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/ports"
	"github.com/cristianoliveira/tab-recall/internal/recency"
)

// DefaultShortcutCommand is the keyboard command that triggers a switch.
const DefaultShortcutCommand = "switch-to-previous-tab"

// ErrUnknownEvent is returned by Dispatch for an unrecognized event kind.
var ErrUnknownEvent = errors.New("unknown event")

// Handler applies one event at a time: restore the store, mutate it, persist
// the full snapshot.
type Handler struct {
	store           ports.KeyValueStore
	platform        ports.TabPlatform
	dedupe          bool
	shortcutCommand string
}

// HandlerOptions tunes a Handler.
type HandlerOptions struct {
	Dedupe          bool
	ShortcutCommand string
}

// NewHandler creates a Handler. platform may be nil for callers that only
// deliver events which never consult the browser.
func NewHandler(store ports.KeyValueStore, platform ports.TabPlatform, opts HandlerOptions) *Handler {
	if store == nil {
		panic("NewHandler: store dependency cannot be nil")
	}
	command := opts.ShortcutCommand
	if command == "" {
		command = DefaultShortcutCommand
	}
	return &Handler{
		store:           store,
		platform:        platform,
		dedupe:          opts.Dedupe,
		shortcutCommand: command,
	}
}

// Installed seeds the history with the active tab on install or update.
// Other reasons are ignored, as is the absence of an active tab.
func (h *Handler) Installed(ctx context.Context, reason string) error {
	if reason != domain.ReasonInstall && reason != domain.ReasonUpdate {
		colors.Debug(fmt.Sprintf("installed: ignoring reason %q", reason))
		return nil
	}
	platform, err := h.requirePlatform()
	if err != nil {
		return err
	}
	tab, ok, err := platform.ActiveTab(ctx)
	if err != nil {
		return fmt.Errorf("query active tab: %w", err)
	}
	if !ok {
		colors.Debug("installed: no active tab, skipping seed")
		return nil
	}
	return h.mutate(ctx, "installed", func(s *recency.Store) error {
		s.PushRecentTab(tab.WindowID, tab.ID)
		return nil
	})
}

// Shortcut switches the window back to its most recent still-open tab.
// Commands other than the configured shortcut are ignored; an empty command
// is accepted.
func (h *Handler) Shortcut(ctx context.Context, command string, windowID domain.WindowID, tabID domain.TabID) (recency.SwitchResult, error) {
	var result recency.SwitchResult
	if command != "" && command != h.shortcutCommand {
		colors.Warning(fmt.Sprintf("shortcut: ignoring command %q (shortcut_command is %q)", command, h.shortcutCommand))
		return result, nil
	}
	platform, err := h.requirePlatform()
	if err != nil {
		return result, err
	}
	err = h.mutate(ctx, "shortcut", func(s *recency.Store) error {
		var switchErr error
		result, switchErr = s.SwitchToMostRecentTab(ctx, platform, windowID, tabID)
		return switchErr
	})
	return result, err
}

// TabActivated records tabID as the most recent tab of windowID.
func (h *Handler) TabActivated(ctx context.Context, windowID domain.WindowID, tabID domain.TabID) error {
	return h.mutate(ctx, "tab_activated", func(s *recency.Store) error {
		s.PushRecentTab(windowID, tabID)
		return nil
	})
}

// WindowClosed drops the history of windowID.
func (h *Handler) WindowClosed(ctx context.Context, windowID domain.WindowID) error {
	return h.mutate(ctx, "window_closed", func(s *recency.Store) error {
		s.ForgetTabs(windowID)
		return nil
	})
}

// Dispatch routes ev to the matching handler method.
func (h *Handler) Dispatch(ctx context.Context, ev domain.Event) error {
	switch ev.Kind {
	case domain.EventInstalled:
		return h.Installed(ctx, ev.Reason)
	case domain.EventShortcut:
		_, err := h.Shortcut(ctx, ev.Command, ev.WindowID, ev.TabID)
		return err
	case domain.EventTabActivated:
		return h.TabActivated(ctx, ev.WindowID, ev.TabID)
	case domain.EventWindowClosed:
		return h.WindowClosed(ctx, ev.WindowID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

// Snapshot returns the persisted snapshot.
func (h *Handler) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s, err := h.restore(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetAll(), nil
}

// Reset persists an empty snapshot.
func (h *Handler) Reset(ctx context.Context) error {
	return h.mutate(ctx, "reset", func(s *recency.Store) error {
		s.SetAll(domain.Snapshot{})
		return nil
	})
}

func (h *Handler) restore(ctx context.Context) (*recency.Store, error) {
	return recency.Restore(ctx, h.store, recency.WithDedupe(h.dedupe))
}

// mutate runs fn against a freshly restored store and persists the result.
// Nothing is persisted when fn fails.
func (h *Handler) mutate(ctx context.Context, action string, fn func(*recency.Store) error) error {
	s, err := h.restore(ctx)
	if err != nil {
		return err
	}
	logSnapshot(action, "before", s.GetAll())
	if err := fn(s); err != nil {
		return err
	}
	after := s.GetAll()
	logSnapshot(action, "after", after)
	return s.Persist(ctx, h.store)
}

func (h *Handler) requirePlatform() (ports.TabPlatform, error) {
	if h.platform == nil {
		return nil, errors.New("no tab platform configured")
	}
	return h.platform, nil
}

func logSnapshot(action, phase string, snapshot domain.Snapshot) {
	if !colors.DebugEnabled() {
		return
	}
	raw, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		return
	}
	colors.StructuredDebug("app", action, phase, nil, "", map[string]interface{}{"tabs": string(raw)})
}
