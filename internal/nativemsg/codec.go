// Package nativemsg implements the Chrome native messaging host: the stdio
// frame codec, the message types, the serve loop and the host manifest.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// MaxOutgoingSize is the largest message the browser accepts from a host.
	MaxOutgoingSize = 1 << 20
	// MaxIncomingSize is the largest message the browser sends to a host.
	MaxIncomingSize = 64 << 20
)

// ErrMessageTooLarge is returned for frames above the size limits.
var ErrMessageTooLarge = errors.New("native message too large")

// Reader decodes length-prefixed frames. The prefix is a uint32 in native
// byte order.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFrame returns the next frame body. It returns io.EOF when the stream
// ends cleanly between frames and io.ErrUnexpectedEOF on a truncated frame.
func (r *Reader) ReadFrame() ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		return nil, err
	}
	size := binary.NativeEndian.Uint32(prefix[:])
	if size > MaxIncomingSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// Read decodes the next frame into v.
func (r *Reader) Read(v any) error {
	body, err := r.ReadFrame()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode native message: %w", err)
	}
	return nil
}

// Writer encodes length-prefixed frames. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes body as one frame.
func (w *Writer) WriteFrame(body []byte) error {
	if len(body) > MaxOutgoingSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(body))
	}
	frame := make([]byte, 4+len(body))
	binary.NativeEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("write native message: %w", err)
	}
	return nil
}

// Write encodes v as JSON and writes it as one frame.
func (w *Writer) Write(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode native message: %w", err)
	}
	return w.WriteFrame(body)
}

func decodeMessage(body []byte, msg *Message) error {
	if err := json.Unmarshal(body, msg); err != nil {
		return fmt.Errorf("decode native message: %w", err)
	}
	return nil
}
