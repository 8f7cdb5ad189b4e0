package store

import (
	"context"

	"github.com/vovakirdan/wirechat-live/internal/core"
)

// Store is the Message Store of record for chat messages.
type Store interface {
	// List returns every message the store holds, in store order.
	List(ctx context.Context) ([]core.Message, error)

	// Create writes a new message and returns it with its store-assigned ID.
	// A rejected write returns *core.DeliveryError.
	Create(ctx context.Context, draft core.Draft) (core.Message, error)
}
