package utils

import "github.com/google/uuid"

// NewID returns a random unique identifier for client-side keys.
func NewID() string {
	return uuid.NewString()
}
