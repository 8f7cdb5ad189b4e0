package core

import "testing"

func TestFeedMergeDeduplicatesByID(t *testing.T) {
	feed := NewFeed()

	for i := 0; i < 3; i++ {
		feed.Merge(Message{ID: "7", Author: "alice", Text: "hi"})
	}

	if feed.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", feed.Len())
	}
	if !feed.Has("7") {
		t.Fatalf("expected feed to contain id 7")
	}
}

func TestFeedMergeKeepsFirstCopy(t *testing.T) {
	feed := NewFeed()

	if !feed.Merge(Message{ID: "1", Text: "first"}) {
		t.Fatalf("first merge should insert")
	}
	if feed.Merge(Message{ID: "1", Text: "second"}) {
		t.Fatalf("second merge should be rejected")
	}

	msgs := feed.Messages()
	if msgs[0].Text != "first" {
		t.Fatalf("unexpected message kept: %+v", msgs[0])
	}
}

func TestFeedMessagesWithoutIDAreNeverDeduplicated(t *testing.T) {
	feed := NewFeed()

	feed.Merge(Message{Author: "alice", Text: "same"})
	feed.Merge(Message{Author: "alice", Text: "same"})

	if feed.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", feed.Len())
	}
	if feed.Has("") {
		t.Fatalf("empty id must never be reported as present")
	}
}

func TestFeedReplaceAndReset(t *testing.T) {
	feed := NewFeed()
	feed.Merge(Message{ID: "old"})

	feed.Replace([]Message{{ID: "1"}, {ID: "2"}, {ID: "1"}})

	if feed.Len() != 2 {
		t.Fatalf("expected 2 messages after replace, got %d", feed.Len())
	}
	if feed.Has("old") {
		t.Fatalf("replace must drop previous messages")
	}

	feed.Reset()
	if feed.Len() != 0 || feed.Has("1") {
		t.Fatalf("reset must clear the feed")
	}
}

func TestFeedMessagesReturnsCopy(t *testing.T) {
	feed := NewFeed()
	feed.Merge(Message{ID: "1", Text: "hi"})

	msgs := feed.Messages()
	msgs[0].Text = "changed"

	if feed.Messages()[0].Text != "hi" {
		t.Fatalf("feed mutated through returned slice")
	}
}

func TestAssignColorsFirstSeenOrderAndCycle(t *testing.T) {
	palette := []Accent{{Name: "a"}, {Name: "b"}}
	msgs := []Message{
		{Author: "carol"},
		{Author: "alice"},
		{Author: "carol"},
		{Author: "bob"},
	}

	colors := AssignColors(msgs, palette)

	if colors["carol"].Name != "a" || colors["alice"].Name != "b" || colors["bob"].Name != "a" {
		t.Fatalf("unexpected color assignment: %+v", colors)
	}
}

func TestAssignColorsEmptyPalette(t *testing.T) {
	colors := AssignColors([]Message{{Author: "alice"}}, nil)
	if len(colors) != 0 {
		t.Fatalf("expected no colors, got %+v", colors)
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"ok", Draft{Author: "A", Text: "hi"}, nil},
		{"blank author", Draft{Author: "  ", Text: "hi"}, ErrEmptyAuthor},
		{"blank text", Draft{Author: "A", Text: " \t"}, ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.draft.Validate(); got != tt.want {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}
