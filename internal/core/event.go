package core

// EventKind is a notification the client emits to its consumer.
type EventKind int

const (
	// EventHistory delivers the full message list after a bulk load or reset.
	EventHistory EventKind = iota
	// EventMessage notifies about a message newly added to the feed.
	EventMessage
	// EventNotice carries a server-reported error that must be shown to the user.
	EventNotice
	// EventStatus notifies about a connection status change.
	EventStatus
)

func (k EventKind) String() string {
	switch k {
	case EventHistory:
		return "history"
	case EventMessage:
		return "message"
	case EventNotice:
		return "notice"
	case EventStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Event is sent to the consumer to describe what changed.
type Event struct {
	Kind     EventKind
	Message  Message
	Messages []Message // For EventHistory
	Notice   *CoreError
	Status   Status
}
