package core

// Feed is the ordered message set of one client session.
// It holds at most one message per non-empty ID. Feed is not safe for
// concurrent use; the client serializes access.
type Feed struct {
	messages []Message
	index    map[MessageID]int
}

// NewFeed constructs an empty feed.
func NewFeed() *Feed {
	return &Feed{index: make(map[MessageID]int)}
}

// Replace swaps the whole message list. Duplicate IDs inside msgs keep the
// first occurrence.
func (f *Feed) Replace(msgs []Message) {
	f.Reset()
	for _, m := range msgs {
		f.Merge(m)
	}
}

// Merge inserts m unless a message with the same ID is already present.
// Messages without an ID are always appended. Returns true if inserted.
func (f *Feed) Merge(m Message) bool {
	if !m.ID.IsZero() {
		if _, exists := f.index[m.ID]; exists {
			return false
		}
		f.index[m.ID] = len(f.messages)
	}
	f.messages = append(f.messages, m)
	return true
}

// Has reports whether a message with the given ID is present.
func (f *Feed) Has(id MessageID) bool {
	if id.IsZero() {
		return false
	}
	_, ok := f.index[id]
	return ok
}

// Len returns the number of messages.
func (f *Feed) Len() int {
	return len(f.messages)
}

// Messages returns a copy of the message list in insertion order.
func (f *Feed) Messages() []Message {
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// Reset removes all messages.
func (f *Feed) Reset() {
	f.messages = nil
	f.index = make(map[MessageID]int)
}
