package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for payment persistence
type Repository interface {
	// Create inserts a payment that MarkPersisted has given an ID
	Create(ctx context.Context, payment *Payment) error

	// GetByID retrieves a payment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// GetByIdentifier retrieves a payment by its idempotency identifier
	GetByIdentifier(ctx context.Context, identifier string) (*Payment, error)

	// Update updates an existing payment
	Update(ctx context.Context, payment *Payment) error
}
