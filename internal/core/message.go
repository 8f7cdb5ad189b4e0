package core

import (
	"strings"
	"time"
)

// UnknownAuthor is shown for records that carry no sender name.
const UnknownAuthor = "Unknown"

// MessageID is the canonical form of a store-assigned message identifier.
// Numeric and string identifiers from the wire collapse to the same value.
type MessageID string

// IsZero reports whether the store has not assigned an identifier yet.
func (id MessageID) IsZero() bool {
	return id == ""
}

// Message is the domain model for a chat message.
type Message struct {
	ID        MessageID
	LocalKey  string // client-side key, set for every message
	Author    string
	Recipient string // empty means broadcast
	Text      string
	CreatedAt time.Time
}

// Broadcast reports whether the message is addressed to all participants.
func (m Message) Broadcast() bool {
	return m.Recipient == ""
}

// DisplayTime formats the creation time for display.
func (m Message) DisplayTime() string {
	if m.CreatedAt.IsZero() {
		return ""
	}
	return m.CreatedAt.Local().Format(time.Kitchen)
}

// Draft is a locally composed message that has not been delivered yet.
type Draft struct {
	Author    string
	Text      string
	Recipient string
}

// Normalize returns the draft with surrounding whitespace removed.
func (d Draft) Normalize() Draft {
	return Draft{
		Author:    strings.TrimSpace(d.Author),
		Text:      strings.TrimSpace(d.Text),
		Recipient: strings.TrimSpace(d.Recipient),
	}
}

// Validate checks that author and text are present after trimming.
func (d Draft) Validate() error {
	n := d.Normalize()
	if n.Author == "" {
		return ErrEmptyAuthor
	}
	if n.Text == "" {
		return ErrEmptyText
	}
	return nil
}
