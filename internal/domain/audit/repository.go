package audit

import (
	"context"

	"github.com/google/uuid"
)

// Log is the append-only store of gateway messages.
type Log interface {
	// Append stores a new message
	Append(ctx context.Context, msg *Message) error

	// FirstWithReference returns the earliest message carrying a reference, or nil
	FirstWithReference(ctx context.Context, paymentID uuid.UUID) (*Message, error)

	// List returns all messages of a payment ordered by creation time
	List(ctx context.Context, paymentID uuid.UUID) ([]*Message, error)
}
