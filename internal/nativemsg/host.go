package nativemsg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/cristianoliveira/tab-recall/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultRequestTimeout bounds how long a request waits for its response.
const DefaultRequestTimeout = 5 * time.Second

var (
	// ErrClosed is returned for requests issued after the session ended.
	ErrClosed = errors.New("native messaging session closed")
	// ErrRequestFailed wraps the error text of an ok=false response.
	ErrRequestFailed = errors.New("extension request failed")
)

// Dispatcher handles one event. *app.Handler implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

// Host runs one native messaging session over a pair of streams. It is also
// the tab platform for the events it serves: platform calls become requests
// answered by the extension on the same channel.
type Host struct {
	in     io.Reader
	reader *Reader
	writer *Writer

	// RequestTimeout bounds each platform request. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
	newID          func() string

	mu      sync.Mutex
	pending map[string]chan Message
	closed  chan struct{}
	once    sync.Once
	queue   *eventQueue
}

var _ ports.TabPlatform = (*Host)(nil)

// NewHost creates a Host reading frames from in and writing frames to out.
func NewHost(in io.Reader, out io.Writer) *Host {
	return &Host{
		in:      in,
		reader:  NewReader(in),
		writer:  NewWriter(out),
		newID:   func() string { return uuid.New().String() },
		pending: make(map[string]chan Message),
		closed:  make(chan struct{}),
		queue:   newEventQueue(),
	}
}

// Serve reads frames until in reaches EOF or ctx is done, handing events to
// d one at a time in arrival order. Events received while a handler waits
// for a response stay queued. Handler failures are logged and do not end
// the session. A clean EOF returns nil.
func (h *Host) Serve(ctx context.Context, d Dispatcher) error {
	if d == nil {
		panic("Serve: dispatcher dependency cannot be nil")
	}
	g, gctx := errgroup.WithContext(ctx)

	if c, ok := h.in.(io.Closer); ok {
		go func() {
			<-gctx.Done()
			c.Close()
		}()
	}

	g.Go(func() error {
		defer h.shutdown()
		return h.readLoop(gctx)
	})
	g.Go(func() error {
		return h.dispatchLoop(gctx, d)
	})

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (h *Host) readLoop(ctx context.Context) error {
	for {
		body, err := h.reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read native message: %w", err)
		}
		var msg Message
		if err := decodeMessage(body, &msg); err != nil {
			colors.Warning(fmt.Sprintf("host: dropping malformed message: %v", err))
			continue
		}
		h.route(msg)
	}
}

func (h *Host) route(msg Message) {
	switch msg.Type {
	case TypeResponse:
		h.mu.Lock()
		ch, ok := h.pending[msg.ID]
		delete(h.pending, msg.ID)
		h.mu.Unlock()
		if !ok {
			colors.Debug(fmt.Sprintf("host: response for unknown request %q", msg.ID))
			return
		}
		ch <- msg
	case TypeEvent:
		ev, err := msg.ToEvent()
		if err != nil {
			colors.Warning(fmt.Sprintf("host: %v", err))
			return
		}
		h.queue.push(ev)
	default:
		colors.Warning(fmt.Sprintf("host: unexpected message type %q", msg.Type))
	}
}

func (h *Host) dispatchLoop(ctx context.Context, d Dispatcher) error {
	for {
		ev, ok := h.queue.pop(ctx)
		if !ok {
			return nil
		}
		start := time.Now()
		err := d.Dispatch(ctx, ev)
		fields := map[string]interface{}{
			"window_id":        int64(ev.WindowID),
			"tab_id":           int64(ev.TabID),
			"duration_seconds": time.Since(start).Seconds(),
		}
		if err != nil {
			colors.StructuredError("host", ev.Kind.String(), "failed", err, "", fields)
			colors.Error(fmt.Sprintf("handle %s: %v", ev.Kind, err))
			continue
		}
		colors.StructuredDebug("host", ev.Kind.String(), "completed", nil, "", fields)
	}
}

// shutdown fails pending requests and lets the dispatcher drain the queue.
func (h *Host) shutdown() {
	h.once.Do(func() {
		close(h.closed)
		h.queue.close()
	})
}

// ActiveTab asks the extension for the active tab of the current window.
func (h *Host) ActiveTab(ctx context.Context) (domain.TabRef, bool, error) {
	resp, err := h.request(ctx, OpActiveTab, 0)
	if err != nil {
		return domain.TabRef{}, false, err
	}
	if resp.Tab == nil {
		return domain.TabRef{}, false, nil
	}
	return *resp.Tab, true, nil
}

// TabExists asks the extension whether the tab is still open.
func (h *Host) TabExists(ctx context.Context, id domain.TabID) (bool, error) {
	resp, err := h.request(ctx, OpTabExists, id)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// ActivateTab asks the extension to focus the tab.
func (h *Host) ActivateTab(ctx context.Context, id domain.TabID) error {
	_, err := h.request(ctx, OpActivateTab, id)
	return err
}

func (h *Host) request(ctx context.Context, op Op, tabID domain.TabID) (Message, error) {
	timeout := h.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	id := h.newID()
	ch := make(chan Message, 1)
	h.mu.Lock()
	select {
	case <-h.closed:
		h.mu.Unlock()
		return Message{}, ErrClosed
	default:
	}
	h.pending[id] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	if err := h.writer.Write(Message{Type: TypeRequest, ID: id, Op: op, TabID: tabID}); err != nil {
		return Message{}, fmt.Errorf("%s: %w", op, err)
	}

	select {
	case resp := <-ch:
		if !resp.OK {
			return resp, fmt.Errorf("%s: %w: %s", op, ErrRequestFailed, resp.Error)
		}
		return resp, nil
	case <-h.closed:
		return Message{}, fmt.Errorf("%s: %w", op, ErrClosed)
	case <-ctx.Done():
		return Message{}, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// eventQueue is an unbounded FIFO so the reader never blocks on a busy
// dispatcher, which may itself be waiting on a response.
type eventQueue struct {
	mu     sync.Mutex
	items  []domain.Event
	ready  chan struct{}
	closed bool
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev domain.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop blocks until an event is available. It reports false once the queue
// is closed and drained, or ctx is done.
func (q *eventQueue) pop(ctx context.Context) (domain.Event, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return domain.Event{}, false
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return domain.Event{}, false
		}
	}
}
