package domain

// EventKind is the kind of a browser lifecycle event.
type EventKind string

const (
	// EventInstalled is delivered when the extension is installed or updated.
	EventInstalled EventKind = "installed"
	// EventShortcut is delivered when the user invokes a keyboard command.
	EventShortcut EventKind = "shortcut"
	// EventTabActivated is delivered when a tab becomes active in its window.
	EventTabActivated EventKind = "tab_activated"
	// EventWindowClosed is delivered when a window is removed.
	EventWindowClosed EventKind = "window_closed"
)

// Install reasons that seed the recency history.
const (
	ReasonInstall = "install"
	ReasonUpdate  = "update"
)

// IsValid checks if the event kind is known.
func (k EventKind) IsValid() bool {
	switch k {
	case EventInstalled, EventShortcut, EventTabActivated, EventWindowClosed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k EventKind) String() string {
	return string(k)
}

// Event is a single lifecycle event pushed in by the event router.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Reason   string
	Command  string
	WindowID WindowID
	TabID    TabID
}
