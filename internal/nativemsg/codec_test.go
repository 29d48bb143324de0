package nativemsg

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(Message{Type: TypeEvent, Event: "tab_activated", WindowID: 5, TabID: 3}))
	require.NoError(t, w.Write(Message{Type: TypeRequest, ID: "a", Op: OpTabExists, TabID: 2}))

	r := NewReader(&buf)
	var first, second Message
	require.NoError(t, r.Read(&first))
	require.NoError(t, r.Read(&second))

	assert.Equal(t, Message{Type: TypeEvent, Event: "tab_activated", WindowID: 5, TabID: 3}, first)
	assert.Equal(t, OpTabExists, second.Op)

	_, err := r.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteFrame([]byte(`{"type":"event"}`)))

	raw := buf.Bytes()
	require.Len(t, raw, 4+16)
	assert.Equal(t, uint32(16), binary.NativeEndian.Uint32(raw[:4]))
	assert.Equal(t, `{"type":"event"}`, string(raw[4:]))
}

func TestWriteRejectsOversizeMessage(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).WriteFrame(make([]byte, MaxOutgoingSize+1))
	require.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Zero(t, buf.Len(), "nothing is written for a rejected frame")

	require.NoError(t, NewWriter(&buf).WriteFrame(make([]byte, MaxOutgoingSize)))
}

func TestReadRejectsOversizePrefix(t *testing.T) {
	var prefix [4]byte
	binary.NativeEndian.PutUint32(prefix[:], MaxIncomingSize+1)

	_, err := NewReader(bytes.NewReader(prefix[:])).ReadFrame()
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReadTruncatedFrame(t *testing.T) {
	var prefix [4]byte
	binary.NativeEndian.PutUint32(prefix[:], 10)
	stream := append(prefix[:], []byte("abc")...)

	_, err := NewReader(bytes.NewReader(stream)).ReadFrame()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(bytes.NewReader([]byte{1, 0})).ReadFrame()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteFrame([]byte("not json")))

	var msg Message
	err := NewReader(&buf).Read(&msg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "decode native message"))
}

func TestEmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteFrame(nil))

	body, err := NewReader(&buf).ReadFrame()
	require.NoError(t, err)
	assert.Empty(t, body)
}
