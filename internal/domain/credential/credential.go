package credential

import (
	"context"
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/google/uuid"
)

// Kind is the type of object the gateway tokenizes.
type Kind string

const (
	KindCard     Kind = "Card"
	KindCustomer Kind = "Customer"
)

// ParseKind accepts "card"/"Card" and "customer"/"Customer".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "card", "Card":
		return KindCard, nil
	case "customer", "Customer":
		return KindCustomer, nil
	default:
		return "", errors.ErrInvalidCredentialKind
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCard || k == KindCustomer
}

// Credential is a gateway-issued reusable token for a card or customer profile.
// Reference stays nil while an offsite flow is pending.
type Credential struct {
	ID             uuid.UUID
	Kind           Kind
	Reference      *string
	LastFourDigits string
	DisplayName    string
	OwnerID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates a credential placeholder without a gateway reference.
func New(kind Kind, displayName, lastFour, ownerID string) *Credential {
	now := time.Now()
	return &Credential{
		ID:             uuid.New(),
		Kind:           kind,
		LastFourDigits: lastFour,
		DisplayName:    displayName,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SetReference stores the gateway token. Empty references are ignored.
func (c *Credential) SetReference(ref string) {
	if ref == "" {
		return
	}
	c.Reference = &ref
	c.UpdatedAt = time.Now()
}

// HasReference reports whether the gateway issued a token.
func (c *Credential) HasReference() bool {
	return c.Reference != nil && *c.Reference != ""
}

// Repository defines the interface for stored credential persistence
type Repository interface {
	Create(ctx context.Context, c *Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	Update(ctx context.Context, c *Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
}
