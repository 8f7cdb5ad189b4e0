package proto

import (
	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/utils"
)

// ToMessage converts a wire record into the domain message.
func ToMessage(r Record) core.Message {
	author := r.Author()
	if author == "" {
		author = core.UnknownAuthor
	}
	return core.Message{
		ID:        core.MessageID(r.ID),
		LocalKey:  utils.NewID(),
		Author:    author,
		Recipient: r.Recipient(),
		Text:      r.Text,
		CreatedAt: r.CreatedAt.Time,
	}
}

// ToMessages converts a batch of wire records.
func ToMessages(records []Record) []core.Message {
	out := make([]core.Message, 0, len(records))
	for _, r := range records {
		out = append(out, ToMessage(r))
	}
	return out
}

// NewChatFrame builds the outgoing channel frame for a draft.
func NewChatFrame(d core.Draft) ChatFrame {
	d = d.Normalize()
	return ChatFrame{
		Type:             TypeChatMessage,
		SenderUsername:   d.Author,
		Message:          d.Text,
		ReceiverUsername: d.Recipient,
	}
}

// NewCreateRequest builds the store write body for a draft.
func NewCreateRequest(d core.Draft) CreateRequest {
	d = d.Normalize()
	return CreateRequest{
		SenderUsername:   d.Author,
		ReceiverUsername: d.Recipient,
		Text:             d.Text,
	}
}
