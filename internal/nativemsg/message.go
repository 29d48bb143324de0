package nativemsg

import (
	"fmt"

	"github.com/cristianoliveira/tab-recall/internal/domain"
)

// MessageType distinguishes the three message shapes on the wire.
type MessageType string

const (
	// TypeEvent is a browser lifecycle event sent by the extension.
	TypeEvent MessageType = "event"
	// TypeRequest is a tab operation the host asks the extension to perform.
	TypeRequest MessageType = "request"
	// TypeResponse answers a request, matched by ID.
	TypeResponse MessageType = "response"
)

// Op is a tab operation carried by a request.
type Op string

const (
	OpActiveTab   Op = "activeTab"
	OpTabExists   Op = "tabExists"
	OpActivateTab Op = "activateTab"
)

// Message is the single wire envelope. Only the fields relevant to Type are
// set.
type Message struct {
	Type MessageType `json:"type" jsonschema:"enum=event,enum=request,enum=response"`

	// event
	Event    domain.EventKind `json:"event,omitempty" jsonschema:"enum=installed,enum=shortcut,enum=tab_activated,enum=window_closed"`
	Reason   string           `json:"reason,omitempty"`
	Command  string           `json:"command,omitempty"`
	WindowID domain.WindowID  `json:"windowId,omitempty"`

	// request and response
	ID    string       `json:"id,omitempty" jsonschema:"format=uuid"`
	Op    Op           `json:"op,omitempty" jsonschema:"enum=activeTab,enum=tabExists,enum=activateTab"`
	TabID domain.TabID `json:"tabId,omitempty"`

	// response
	OK     bool           `json:"ok,omitempty"`
	Exists bool           `json:"exists,omitempty"`
	Tab    *domain.TabRef `json:"tab,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// EventMessage builds the wire form of ev.
func EventMessage(ev domain.Event) Message {
	return Message{
		Type:     TypeEvent,
		Event:    ev.Kind,
		Reason:   ev.Reason,
		Command:  ev.Command,
		WindowID: ev.WindowID,
		TabID:    ev.TabID,
	}
}

// ToEvent converts an event message to a domain event.
func (m Message) ToEvent() (domain.Event, error) {
	if m.Type != TypeEvent {
		return domain.Event{}, fmt.Errorf("message type %q is not an event", m.Type)
	}
	if !m.Event.IsValid() {
		return domain.Event{}, fmt.Errorf("unknown event %q", m.Event)
	}
	return domain.Event{
		Kind:     m.Event,
		Reason:   m.Reason,
		Command:  m.Command,
		WindowID: m.WindowID,
		TabID:    m.TabID,
	}, nil
}
