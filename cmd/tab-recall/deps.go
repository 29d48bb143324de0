package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/app"
	"github.com/cristianoliveira/tab-recall/internal/chrome"
	"github.com/cristianoliveira/tab-recall/internal/config"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/nativemsg"
	"github.com/cristianoliveira/tab-recall/internal/ports"
	"github.com/cristianoliveira/tab-recall/internal/recency"
	"github.com/cristianoliveira/tab-recall/internal/storage"
)

// platformConn is a tab platform holding a connection that must be closed.
type platformConn interface {
	ports.TabPlatform
	Close() error
}

// client runs each command against the configured store. The browser is
// dialled only for events that consult it.
type client struct {
	openStore func() (storage.Storage, error)
	dial      func(ctx context.Context, url string) (platformConn, error)
	cdpURL    func() string
	cfg       ports.ConfigProvider
}

func newClient() *client {
	return &client{
		openStore: storage.NewFromConfig,
		dial: func(ctx context.Context, url string) (platformConn, error) {
			return chrome.Dial(ctx, url)
		},
		cdpURL: cmd.CDPURL,
		cfg:    config.Provider{},
	}
}

var defaultClient = newClient()

func (c *client) handlerOptions() app.HandlerOptions {
	return app.HandlerOptions{
		Dedupe:          c.cfg.GetConfigBool("dedupe_on_push", false),
		ShortcutCommand: c.cfg.GetConfigString("shortcut_command", app.DefaultShortcutCommand),
	}
}

func (c *client) withHandler(ctx context.Context, withPlatform bool, fn func(*app.Handler) error) error {
	store, err := c.openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var platform ports.TabPlatform
	if withPlatform {
		conn, err := c.dial(ctx, c.cdpURL())
		if err != nil {
			return fmt.Errorf("connect to browser: %w", err)
		}
		defer conn.Close()
		platform = conn
	}
	return fn(app.NewHandler(store, platform, c.handlerOptions()))
}

// Installed delivers an installed event.
func (c *client) Installed(ctx context.Context, reason string) error {
	seeds := reason == domain.ReasonInstall || reason == domain.ReasonUpdate
	return c.withHandler(ctx, seeds, func(h *app.Handler) error {
		return h.Installed(ctx, reason)
	})
}

// Shortcut delivers a keyboard command.
func (c *client) Shortcut(ctx context.Context, command string, windowID domain.WindowID, tabID domain.TabID) (recency.SwitchResult, error) {
	var result recency.SwitchResult
	switches := command == "" || command == c.handlerOptions().ShortcutCommand
	err := c.withHandler(ctx, switches, func(h *app.Handler) error {
		var err error
		result, err = h.Shortcut(ctx, command, windowID, tabID)
		return err
	})
	return result, err
}

// TabActivated records a tab activation.
func (c *client) TabActivated(ctx context.Context, windowID domain.WindowID, tabID domain.TabID) error {
	return c.withHandler(ctx, false, func(h *app.Handler) error {
		return h.TabActivated(ctx, windowID, tabID)
	})
}

// WindowClosed forgets a window.
func (c *client) WindowClosed(ctx context.Context, windowID domain.WindowID) error {
	return c.withHandler(ctx, false, func(h *app.Handler) error {
		return h.WindowClosed(ctx, windowID)
	})
}

// Snapshot returns the persisted history.
func (c *client) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := c.withHandler(ctx, false, func(h *app.Handler) error {
		var err error
		snapshot, err = h.Snapshot(ctx)
		return err
	})
	return snapshot, err
}

// Reset persists an empty history.
func (c *client) Reset(ctx context.Context) error {
	return c.withHandler(ctx, false, func(h *app.Handler) error {
		return h.Reset(ctx)
	})
}

// Serve runs a native messaging session. The extension on the other end of
// the streams is also the tab platform.
func (c *client) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	store, err := c.openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	host := nativemsg.NewHost(in, out)
	return host.Serve(ctx, app.NewHandler(store, host, c.handlerOptions()))
}

// Follow prints the history whenever it changes.
func (c *client) Follow(ctx context.Context, interval time.Duration, out io.Writer, render func(domain.Snapshot) string) error {
	store, err := c.openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	opts := app.FollowOptions{
		Source:   app.NewHandler(store, nil, c.handlerOptions()),
		Interval: interval,
		Output:   out,
		Render:   render,
	}
	if fs, ok := store.(*storage.FileStorage); ok {
		opts.WatchPath = fs.Path()
	}
	return app.Follow(ctx, opts)
}
