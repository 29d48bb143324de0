package chrome

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	targets   []*target.Info
	recent    []*target.Info
	windows   map[target.ID]domain.WindowID
	activated []target.ID
	err       error
}

func (f *fakeAPI) Targets(context.Context) ([]*target.Info, error) {
	return f.targets, f.err
}

func (f *fakeAPI) RecentPages(context.Context) ([]*target.Info, error) {
	return f.recent, f.err
}

func (f *fakeAPI) WindowForTarget(_ context.Context, id target.ID) (domain.WindowID, error) {
	w, ok := f.windows[id]
	if !ok {
		return 0, errors.New("no window")
	}
	return w, nil
}

func (f *fakeAPI) Activate(_ context.Context, id target.ID) error {
	f.activated = append(f.activated, id)
	return nil
}

func page(id, url string) *target.Info {
	return &target.Info{TargetID: target.ID(id), Type: "page", URL: url}
}

func newFake() *fakeAPI {
	return &fakeAPI{
		targets: []*target.Info{
			{TargetID: "SW1", Type: "service_worker", URL: "chrome-extension://x/bg.js"},
			page("DEVTOOLS", "devtools://devtools/bundled/inspector.html"),
			page("AAA", "https://example.com"),
			page("BBB", "https://go.dev"),
		},
		recent: []*target.Info{
			page("DEVTOOLS", "devtools://devtools/bundled/inspector.html"),
			page("BBB", "https://go.dev"),
			page("AAA", "https://example.com"),
		},
		windows: map[target.ID]domain.WindowID{"AAA": 5, "BBB": 7},
	}
}

func TestTabIDForIsStablePositive(t *testing.T) {
	a := TabIDFor("8D1F3C7A2B9E4F60")
	b := TabIDFor("8D1F3C7A2B9E4F60")
	c := TabIDFor("0F2E9A1B")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, id := range []domain.TabID{a, c, TabIDFor("")} {
		assert.Greater(t, int64(id), int64(0))
		assert.LessOrEqual(t, int64(id), int64(0x7fffffff))
	}
}

func TestFilterPages(t *testing.T) {
	pages := filterPages(append(newFake().targets, nil))
	require.Len(t, pages, 2)
	assert.Equal(t, target.ID("AAA"), pages[0].TargetID)
	assert.Equal(t, target.ID("BBB"), pages[1].TargetID)
}

func TestActiveTab(t *testing.T) {
	p := &Platform{api: newFake()}

	tab, ok, err := p.ActiveTab(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.TabRef{ID: TabIDFor("BBB"), WindowID: 7}, tab)
}

func TestActiveTabListFails(t *testing.T) {
	p := &Platform{api: &fakeAPI{err: errors.New("connection refused")}}

	_, _, err := p.ActiveTab(context.Background())
	require.ErrorContains(t, err, "list recent pages: connection refused")
}

func TestActiveTabNoPages(t *testing.T) {
	p := &Platform{api: &fakeAPI{targets: []*target.Info{{TargetID: "SW", Type: "service_worker"}}}}

	_, ok, err := p.ActiveTab(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveTabWindowLookupFails(t *testing.T) {
	api := newFake()
	delete(api.windows, "BBB")
	p := &Platform{api: api}

	_, _, err := p.ActiveTab(context.Background())
	require.ErrorContains(t, err, "window for target BBB")
}

func TestTabExists(t *testing.T) {
	p := &Platform{api: newFake()}
	ctx := context.Background()

	ok, err := p.TabExists(ctx, TabIDFor("BBB"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.TabExists(ctx, TabIDFor("DEVTOOLS"))
	require.NoError(t, err)
	assert.False(t, ok, "devtools windows are not tabs")

	ok, err = p.TabExists(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivateTab(t *testing.T) {
	api := newFake()
	p := &Platform{api: api}

	require.NoError(t, p.ActivateTab(context.Background(), TabIDFor("BBB")))
	assert.Equal(t, []target.ID{"BBB"}, api.activated)

	err := p.ActivateTab(context.Background(), 42)
	require.ErrorIs(t, err, ErrTabNotFound)
	assert.Len(t, api.activated, 1)
}

func TestTargetsErrorPropagates(t *testing.T) {
	p := &Platform{api: &fakeAPI{err: errors.New("websocket closed")}}

	_, err := p.TabExists(context.Background(), 1)
	require.ErrorContains(t, err, "websocket closed")
	_, _, err = p.ActiveTab(context.Background())
	require.Error(t, err)
}

func TestDialRejectsEmptyURL(t *testing.T) {
	_, err := Dial(context.Background(), " ")
	require.Error(t, err)

	_, err = Dial(context.Background(), "ftp://127.0.0.1:9222")
	require.ErrorContains(t, err, "unsupported scheme")
}

func TestCloseWithoutConnection(t *testing.T) {
	assert.NoError(t, (&Platform{}).Close())
}

func TestListEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://127.0.0.1:9222", want: "http://127.0.0.1:9222/json/list"},
		{in: "https://chrome.local:9222/", want: "https://chrome.local:9222/json/list"},
		{in: "ws://127.0.0.1:9222/devtools/browser/abc", want: "http://127.0.0.1:9222/json/list"},
		{in: "wss://chrome.local/devtools/browser/abc", want: "https://chrome.local/json/list"},
		{in: "ftp://127.0.0.1:9222", wantErr: true},
		{in: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := listEndpoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecentPagesKeepsListOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/list", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"BBB","type":"page","url":"https://go.dev","title":"Go"},
			{"id":"SW1","type":"service_worker","url":"chrome-extension://x/bg.js"},
			{"id":"AAA","type":"page","url":"https://example.com"}
		]`))
	}))
	defer srv.Close()
	listURL, err := listEndpoint(srv.URL)
	require.NoError(t, err)
	api := &cdpAPI{ctx: context.Background(), listURL: listURL, client: srv.Client()}

	infos, err := api.RecentPages(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, target.ID("BBB"), infos[0].TargetID)
	assert.Equal(t, "page", infos[0].Type)
	assert.Equal(t, "https://go.dev", infos[0].URL)
	assert.Equal(t, target.ID("AAA"), infos[2].TargetID)
}

func TestRecentPagesBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	api := &cdpAPI{ctx: context.Background(), listURL: srv.URL + "/json/list", client: srv.Client()}

	_, err := api.RecentPages(context.Background())
	require.ErrorContains(t, err, "404")
}

func TestRecentPagesHonoursCallerContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	api := &cdpAPI{ctx: context.Background(), listURL: srv.URL + "/json/list", client: srv.Client()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.RecentPages(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type ctxKey struct{}

func TestScopedFollowsCallerCancellation(t *testing.T) {
	parent := context.WithValue(context.Background(), ctxKey{}, "browser")
	caller, cancelCaller := context.WithCancel(context.Background())

	ctx, cancel := scoped(parent, caller)
	defer cancel()
	assert.Equal(t, "browser", ctx.Value(ctxKey{}))
	require.NoError(t, ctx.Err())

	cancelCaller()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.NoError(t, parent.Err())
}

func TestScopedReleaseLeavesCallerAlone(t *testing.T) {
	caller, cancelCaller := context.WithCancel(context.Background())
	defer cancelCaller()

	ctx, cancel := scoped(context.Background(), caller)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.NoError(t, caller.Err())
}

func TestTargetsHonoursCancelledContext(t *testing.T) {
	api := &cdpAPI{ctx: context.Background()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.Targets(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
