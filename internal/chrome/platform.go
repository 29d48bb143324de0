// Package chrome drives tab operations through the Chrome DevTools Protocol
// of a running browser started with --remote-debugging-port.
package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/ports"
)

const targetTypePage = "page"

// ErrTabNotFound is returned when no open page maps to the tab id.
var ErrTabNotFound = errors.New("tab not found")

// targetAPI is the slice of CDP the platform needs.
type targetAPI interface {
	Targets(ctx context.Context) ([]*target.Info, error)
	// RecentPages lists targets with the most recently active first.
	RecentPages(ctx context.Context) ([]*target.Info, error)
	WindowForTarget(ctx context.Context, id target.ID) (domain.WindowID, error)
	Activate(ctx context.Context, id target.ID) error
}

// Platform implements ports.TabPlatform over CDP.
type Platform struct {
	api    targetAPI
	cancel context.CancelFunc
}

var _ ports.TabPlatform = (*Platform)(nil)

// Dial connects to the browser's DevTools endpoint, either the http://
// address of --remote-debugging-port or a ws:// browser URL.
func Dial(ctx context.Context, endpoint string) (*Platform, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("cdp url cannot be empty")
	}
	listURL, err := listEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, endpoint)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	api := &cdpAPI{ctx: browserCtx, listURL: listURL, client: http.DefaultClient}
	if _, err := api.Targets(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("connect to %s: %w", endpoint, err)
	}
	colors.Debug("connected to browser at " + endpoint)
	return &Platform{api: api, cancel: cancel}, nil
}

// Close releases the DevTools connection. The browser keeps running.
func (p *Platform) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// TabIDFor maps a CDP target id onto the integer tab id space.
func TabIDFor(id target.ID) domain.TabID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	v := h.Sum32() & 0x7fffffff
	if v == 0 {
		v = 1
	}
	return domain.TabID(v)
}

// ActiveTab returns the page the browser saw activity on last. The protocol
// has no focus query, so this is the head of the /json/list ordering.
func (p *Platform) ActiveTab(ctx context.Context) (domain.TabRef, bool, error) {
	recent, err := p.api.RecentPages(ctx)
	if err != nil {
		return domain.TabRef{}, false, fmt.Errorf("list recent pages: %w", err)
	}
	pages := filterPages(recent)
	if len(pages) == 0 {
		return domain.TabRef{}, false, nil
	}
	first := pages[0]
	windowID, err := p.api.WindowForTarget(ctx, first.TargetID)
	if err != nil {
		return domain.TabRef{}, false, fmt.Errorf("window for target %s: %w", first.TargetID, err)
	}
	return domain.TabRef{ID: TabIDFor(first.TargetID), WindowID: windowID}, true, nil
}

// TabExists reports whether an open page maps to id.
func (p *Platform) TabExists(ctx context.Context, id domain.TabID) (bool, error) {
	_, ok, err := p.find(ctx, id)
	return ok, err
}

// ActivateTab focuses the page that maps to id.
func (p *Platform) ActivateTab(ctx context.Context, id domain.TabID) error {
	info, ok, err := p.find(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	if err := p.api.Activate(ctx, info.TargetID); err != nil {
		return fmt.Errorf("activate target %s: %w", info.TargetID, err)
	}
	return nil
}

func (p *Platform) find(ctx context.Context, id domain.TabID) (*target.Info, bool, error) {
	pages, err := p.pages(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, info := range pages {
		if TabIDFor(info.TargetID) == id {
			return info, true, nil
		}
	}
	return nil, false, nil
}

func (p *Platform) pages(ctx context.Context) ([]*target.Info, error) {
	targets, err := p.api.Targets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}
	return filterPages(targets), nil
}

// filterPages keeps user-visible tabs: page targets that are not DevTools
// windows.
func filterPages(targets []*target.Info) []*target.Info {
	pages := make([]*target.Info, 0, len(targets))
	for _, t := range targets {
		if t == nil || t.Type != targetTypePage || strings.HasPrefix(t.URL, "devtools://") {
			continue
		}
		pages = append(pages, t)
	}
	return pages
}

// cdpAPI talks to the browser endpoint without attaching to any tab.
type cdpAPI struct {
	ctx     context.Context
	listURL string
	client  *http.Client
}

// listEndpoint maps a DevTools address onto its /json/list URL.
func listEndpoint(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse cdp url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("cdp url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("cdp url %q has no host", raw)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/json/list"}).String(), nil
}

// listEntry is one element of the /json/list response.
type listEntry struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// RecentPages reads /json/list, which Chrome sorts by last activity time.
func (a *cdpAPI) RecentPages(ctx context.Context) ([]*target.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.listURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", a.listURL, resp.Status)
	}
	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.listURL, err)
	}
	infos := make([]*target.Info, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, &target.Info{TargetID: target.ID(e.ID), Type: e.Type, URL: e.URL})
	}
	return infos, nil
}

// exec returns a context whose executor is the browser connection, scoped to
// the caller's deadline.
func (a *cdpAPI) exec(ctx context.Context) (context.Context, context.CancelFunc, error) {
	c := chromedp.FromContext(a.ctx)
	if c == nil || c.Browser == nil {
		return nil, nil, fmt.Errorf("no browser connection")
	}
	execCtx, cancel := scoped(cdp.WithExecutor(a.ctx, c.Browser), ctx)
	return execCtx, cancel, nil
}

// scoped derives a context from parent that is also cancelled when ctx is
// done.
func scoped(parent, ctx context.Context) (context.Context, context.CancelFunc) {
	out, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(ctx, cancel)
	return out, func() {
		stop()
		cancel()
	}
}

func (a *cdpAPI) Targets(ctx context.Context) ([]*target.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c := chromedp.FromContext(a.ctx); c != nil && c.Browser == nil {
		// The first call allocates the browser connection. Dial passes its
		// own ctx to the allocator, so the dial deadline bounds this.
		return chromedp.Targets(a.ctx)
	}
	execCtx, cancel, err := a.exec(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return target.GetTargets().Do(execCtx)
}

func (a *cdpAPI) WindowForTarget(ctx context.Context, id target.ID) (domain.WindowID, error) {
	execCtx, cancel, err := a.exec(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()
	windowID, _, err := browser.GetWindowForTarget().WithTargetID(id).Do(execCtx)
	if err != nil {
		return 0, err
	}
	return domain.WindowID(windowID), nil
}

func (a *cdpAPI) Activate(ctx context.Context, id target.ID) error {
	execCtx, cancel, err := a.exec(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return target.ActivateTarget(id).Do(execCtx)
}
